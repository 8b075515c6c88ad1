package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giacuong333/marketplace/internal/domain"
	"github.com/giacuong333/marketplace/internal/event"
	"github.com/giacuong333/marketplace/internal/repository"
	apperrors "github.com/giacuong333/marketplace/pkg/errors"
	"github.com/giacuong333/marketplace/pkg/slug"
)

// CategoryService implements the business logic for service category operations.
type CategoryService struct {
	repo     repository.CategoryRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCategoryService creates a new service category service.
func NewCategoryService(repo repository.CategoryRepository, producer *event.Producer, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateCategoryInput holds the parameters for creating a service category.
type CreateCategoryInput struct {
	Name   string
	Status string
}

// UpdateCategoryInput holds the parameters for updating a service category.
type UpdateCategoryInput struct {
	Name   *string
	Status *string
}

// CreateCategory creates a new service category with an optional image.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput, image *domain.Image) (*domain.ServiceCategory, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}
	status := input.Status
	if status == "" {
		status = domain.StatusActive
	}
	if !domain.IsValidStatus(status) {
		return nil, apperrors.InvalidInput("status must be active or inactive")
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.ServiceCategory{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Slug:      slug.Generate(input.Name),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, category, image); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory retrieves a service category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id string) (*domain.ServiceCategory, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// ListCategories returns categories matching the filter along with the total count.
func (s *CategoryService) ListCategories(ctx context.Context, filter repository.ListFilter) ([]domain.ServiceCategory, int, error) {
	categories, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return categories, total, nil
}

// UpdateCategory applies a partial update; a non-nil image replaces the stored one.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, input *UpdateCategoryInput, image *domain.Image) (*domain.ServiceCategory, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("category name must not be empty")
		}
		category.Name = *input.Name
		category.Slug = slug.Generate(*input.Name)
	}
	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput("status must be active or inactive")
		}
		category.Status = *input.Status
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, category, image); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.String("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", category.ID),
	)

	return category, nil
}

// DeleteCategory removes a service category by its ID.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, []string{id}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

// DeleteCategories removes all categories whose IDs are in the list and
// returns the number of rows removed. An empty list is rejected.
func (s *CategoryService) DeleteCategories(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.InvalidInput("at least one category id is required")
	}

	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, ids); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "categories deleted",
		slog.Int("requested", len(ids)),
		slog.Int("deleted", n),
	)

	return n, nil
}

// GetCategoryImage retrieves the stored image for a service category.
func (s *CategoryService) GetCategoryImage(ctx context.Context, id string) (*domain.Image, error) {
	image, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category image: %w", err)
	}
	return image, nil
}

// ImportCategories bulk-inserts categories and returns how many were created.
// Rows that fail validation or collide with existing names are skipped and
// reported back by name.
func (s *CategoryService) ImportCategories(ctx context.Context, inputs []CreateCategoryInput) (int, []string, error) {
	if len(inputs) == 0 {
		return 0, nil, apperrors.InvalidInput("import payload is empty")
	}

	var (
		created int
		skipped []string
	)

	for i := range inputs {
		if _, err := s.CreateCategory(ctx, &inputs[i], nil); err != nil {
			s.logger.WarnContext(ctx, "skipping category import row",
				slog.String("name", inputs[i].Name),
				slog.String("error", err.Error()),
			)
			skipped = append(skipped, inputs[i].Name)
			continue
		}
		created++
	}

	s.logger.InfoContext(ctx, "categories imported",
		slog.Int("created", created),
		slog.Int("skipped", len(skipped)),
	)

	return created, skipped, nil
}
