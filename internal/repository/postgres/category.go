package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/giacuong333/marketplace/internal/domain"
	"github.com/giacuong333/marketplace/internal/repository"
	"github.com/giacuong333/marketplace/pkg/database"
	apperrors "github.com/giacuong333/marketplace/pkg/errors"
)

// categoryColumns is the standard SELECT column list for service categories.
const categoryColumns = `id, name, slug, status, image_name, image_type, created_at, updated_at`

// categorySortColumns whitelists columns that list queries may sort by.
var categorySortColumns = map[string]string{
	"name":       "name",
	"status":     "status",
	"created_at": "created_at",
}

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed service category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new service category into the database, including any image payload.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.ServiceCategory, image *domain.Image) error {
	var imageData []byte
	if image != nil {
		c.ImageName = &image.Name
		c.ImageType = &image.ContentType
		imageData = image.Data
	}

	query := `
		INSERT INTO service_categories (id, name, slug, status, image_name, image_type, image_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Slug,
		c.Status,
		c.ImageName,
		c.ImageType,
		imageData,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a service category by its unique identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.ServiceCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_categories WHERE id = $1`, categoryColumns)

	var c domain.ServiceCategory
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Status,
		&c.ImageName,
		&c.ImageType,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns service categories matching the filter along with the total count.
func (r *CategoryRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.ServiceCategory, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM service_categories
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		categoryColumns, whereClause, orderClause(categorySortColumns, filter), argIndex, argIndex+1,
	)

	limit, offset := limitOffset(filter)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var (
		categories []domain.ServiceCategory
		totalCount int
	)

	for rows.Next() {
		var c domain.ServiceCategory
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Status,
			&c.ImageName,
			&c.ImageType,
			&c.CreatedAt,
			&c.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.ServiceCategory{}
	}

	return categories, totalCount, nil
}

// Update modifies an existing service category; a non-nil image replaces the stored one.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.ServiceCategory, image *domain.Image) error {
	c.UpdatedAt = time.Now().UTC()

	if image != nil {
		c.ImageName = &image.Name
		c.ImageType = &image.ContentType

		query := `
			UPDATE service_categories
			SET name = $1, slug = $2, status = $3, image_name = $4, image_type = $5,
			    image_data = $6, updated_at = $7
			WHERE id = $8`

		ct, err := r.pool.Exec(ctx, query,
			c.Name, c.Slug, c.Status, c.ImageName, c.ImageType, image.Data, c.UpdatedAt, c.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("category", "name", c.Name)
			}
			return fmt.Errorf("update category: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("category", c.ID)
		}
		return nil
	}

	query := `
		UPDATE service_categories
		SET name = $1, slug = $2, status = $3, updated_at = $4
		WHERE id = $5`

	ct, err := r.pool.Exec(ctx, query, c.Name, c.Slug, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes a service category from the database by its ID.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM service_categories WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}

// DeleteMany removes all service categories whose IDs are in the list.
func (r *CategoryRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	query := `DELETE FROM service_categories WHERE id = ANY($1)`

	ct, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

// GetImage retrieves the stored image for a service category.
func (r *CategoryRepository) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	query := `SELECT image_name, image_type, image_data FROM service_categories WHERE id = $1`

	var (
		name        *string
		contentType *string
		data        []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&name, &contentType, &data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category image: %w", err)
	}

	if name == nil || len(data) == 0 {
		return nil, apperrors.ErrNotFound
	}

	img := &domain.Image{Name: *name, Data: data}
	if contentType != nil {
		img.ContentType = *contentType
	}

	return img, nil
}
