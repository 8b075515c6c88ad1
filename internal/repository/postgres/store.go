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

// storeColumns is the standard SELECT column list for stores. Image bytes are
// fetched separately via GetImage to keep list queries light.
const storeColumns = `id, name, slug, description, address, phone, open_time, close_time,
	status, owner_id, image_name, image_type, created_at, updated_at`

// storeSortColumns whitelists columns that list queries may sort by.
var storeSortColumns = map[string]string{
	"name":       "name",
	"address":    "address",
	"status":     "status",
	"open_time":  "open_time",
	"close_time": "close_time",
	"created_at": "created_at",
}

// StoreRepository implements repository.StoreRepository using PostgreSQL.
type StoreRepository struct {
	pool database.DBTX
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(pool database.DBTX) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// Create inserts a new store into the database, including any image payload.
func (r *StoreRepository) Create(ctx context.Context, s *domain.Store, image *domain.Image) error {
	var imageData []byte
	if image != nil {
		s.ImageName = &image.Name
		s.ImageType = &image.ContentType
		imageData = image.Data
	}

	query := `
		INSERT INTO stores (id, name, slug, description, address, phone, open_time, close_time,
			status, owner_id, image_name, image_type, image_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Name,
		s.Slug,
		s.Description,
		s.Address,
		s.Phone,
		s.OpenTime,
		s.CloseTime,
		s.Status,
		s.OwnerID,
		s.ImageName,
		s.ImageType,
		imageData,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("store", "name", s.Name)
		}
		return fmt.Errorf("insert store: %w", err)
	}

	return nil
}

// GetByID retrieves a store by its unique identifier.
func (r *StoreRepository) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1`, storeColumns)

	var s domain.Store
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.Slug,
		&s.Description,
		&s.Address,
		&s.Phone,
		&s.OpenTime,
		&s.CloseTime,
		&s.Status,
		&s.OwnerID,
		&s.ImageName,
		&s.ImageType,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}

	return &s, nil
}

// List returns stores matching the filter along with the total count.
func (r *StoreRepository) List(ctx context.Context, filter repository.ListFilter) ([]domain.Store, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil {
		conditions = append(conditions,
			fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d OR phone ILIKE $%d)", argIndex, argIndex, argIndex))
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
		FROM stores
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		storeColumns, whereClause, orderClause(storeSortColumns, filter), argIndex, argIndex+1,
	)

	limit, offset := limitOffset(filter)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var (
		stores     []domain.Store
		totalCount int
	)

	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Slug,
			&s.Description,
			&s.Address,
			&s.Phone,
			&s.OpenTime,
			&s.CloseTime,
			&s.Status,
			&s.OwnerID,
			&s.ImageName,
			&s.ImageType,
			&s.CreatedAt,
			&s.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate store rows: %w", err)
	}

	if stores == nil {
		stores = []domain.Store{}
	}

	return stores, totalCount, nil
}

// Update modifies an existing store; a non-nil image replaces the stored one.
func (r *StoreRepository) Update(ctx context.Context, s *domain.Store, image *domain.Image) error {
	s.UpdatedAt = time.Now().UTC()

	if image != nil {
		s.ImageName = &image.Name
		s.ImageType = &image.ContentType

		query := `
			UPDATE stores
			SET name = $1, slug = $2, description = $3, address = $4, phone = $5,
			    open_time = $6, close_time = $7, status = $8, owner_id = $9,
			    image_name = $10, image_type = $11, image_data = $12, updated_at = $13
			WHERE id = $14`

		ct, err := r.pool.Exec(ctx, query,
			s.Name, s.Slug, s.Description, s.Address, s.Phone,
			s.OpenTime, s.CloseTime, s.Status, s.OwnerID,
			s.ImageName, s.ImageType, image.Data, s.UpdatedAt, s.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("store", "name", s.Name)
			}
			return fmt.Errorf("update store: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("store", s.ID)
		}
		return nil
	}

	query := `
		UPDATE stores
		SET name = $1, slug = $2, description = $3, address = $4, phone = $5,
		    open_time = $6, close_time = $7, status = $8, owner_id = $9, updated_at = $10
		WHERE id = $11`

	ct, err := r.pool.Exec(ctx, query,
		s.Name, s.Slug, s.Description, s.Address, s.Phone,
		s.OpenTime, s.CloseTime, s.Status, s.OwnerID, s.UpdatedAt, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("store", "name", s.Name)
		}
		return fmt.Errorf("update store: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("store", s.ID)
	}

	return nil
}

// Delete removes a store from the database by its ID.
func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM stores WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("store", id)
	}

	return nil
}

// DeleteMany removes all stores whose IDs are in the list.
func (r *StoreRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	query := `DELETE FROM stores WHERE id = ANY($1)`

	ct, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete stores: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

// GetImage retrieves the stored image for a store.
func (r *StoreRepository) GetImage(ctx context.Context, id string) (*domain.Image, error) {
	query := `SELECT image_name, image_type, image_data FROM stores WHERE id = $1`

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
		return nil, fmt.Errorf("scan store image: %w", err)
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
