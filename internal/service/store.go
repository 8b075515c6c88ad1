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
	"github.com/giacuong333/marketplace/pkg/validate"
)

// StoreService implements the business logic for store operations.
type StoreService struct {
	repo     repository.StoreRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewStoreService creates a new store service.
func NewStoreService(repo repository.StoreRepository, producer *event.Producer, logger *slog.Logger) *StoreService {
	return &StoreService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateStoreInput holds the parameters for creating a store.
type CreateStoreInput struct {
	Name        string
	Description string
	Address     string
	Phone       string
	OpenTime    string
	CloseTime   string
	Status      string
	OwnerID     *string
}

// UpdateStoreInput holds the parameters for updating a store.
type UpdateStoreInput struct {
	Name        *string
	Description *string
	Address     *string
	Phone       *string
	OpenTime    *string
	CloseTime   *string
	Status      *string
	OwnerID     *string
}

// CreateStore creates a new store with an optional image.
func (s *StoreService) CreateStore(ctx context.Context, input *CreateStoreInput, image *domain.Image) (*domain.Store, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("store name is required")
	}
	if input.Phone != "" && !validate.IsPhone(input.Phone) {
		return nil, apperrors.InvalidInput("phone must be 10 to 12 digits")
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
	store := &domain.Store{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Address:     input.Address,
		Phone:       input.Phone,
		OpenTime:    input.OpenTime,
		CloseTime:   input.CloseTime,
		Status:      status,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, store, image); err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := s.producer.PublishStoreCreated(ctx, store); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish store.created event",
			slog.String("store_id", store.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "store created",
		slog.String("store_id", store.ID),
		slog.String("slug", store.Slug),
	)

	return store, nil
}

// GetStore retrieves a store by its ID.
func (s *StoreService) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	store, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store by id: %w", err)
	}
	return store, nil
}

// ListStores returns stores matching the filter along with the total count.
func (s *StoreService) ListStores(ctx context.Context, filter repository.ListFilter) ([]domain.Store, int, error) {
	stores, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list stores: %w", err)
	}
	return stores, total, nil
}

// UpdateStore applies a partial update to a store; a non-nil image replaces
// the stored one.
func (s *StoreService) UpdateStore(ctx context.Context, id string, input *UpdateStoreInput, image *domain.Image) (*domain.Store, error) {
	store, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("store name must not be empty")
		}
		store.Name = *input.Name
		store.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		store.Description = *input.Description
	}
	if input.Address != nil {
		store.Address = *input.Address
	}
	if input.Phone != nil {
		if *input.Phone != "" && !validate.IsPhone(*input.Phone) {
			return nil, apperrors.InvalidInput("phone must be 10 to 12 digits")
		}
		store.Phone = *input.Phone
	}
	if input.OpenTime != nil {
		store.OpenTime = *input.OpenTime
	}
	if input.CloseTime != nil {
		store.CloseTime = *input.CloseTime
	}
	if input.Status != nil {
		if !domain.IsValidStatus(*input.Status) {
			return nil, apperrors.InvalidInput("status must be active or inactive")
		}
		store.Status = *input.Status
	}
	if input.OwnerID != nil {
		store.OwnerID = input.OwnerID
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, store, image); err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}

	if err := s.producer.PublishStoreUpdated(ctx, store); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish store.updated event",
			slog.String("store_id", store.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "store updated",
		slog.String("store_id", store.ID),
	)

	return store, nil
}

// DeleteStore removes a store by its ID.
func (s *StoreService) DeleteStore(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}

	if err := s.producer.PublishStoreDeleted(ctx, []string{id}); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish store.deleted event",
			slog.String("store_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "store deleted",
		slog.String("store_id", id),
	)

	return nil
}

// DeleteStores removes all stores whose IDs are in the list and returns the
// number of rows removed. An empty list is rejected.
func (s *StoreService) DeleteStores(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.InvalidInput("at least one store id is required")
	}

	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete stores: %w", err)
	}

	if err := s.producer.PublishStoreDeleted(ctx, ids); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish store.deleted event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stores deleted",
		slog.Int("requested", len(ids)),
		slog.Int("deleted", n),
	)

	return n, nil
}

// GetStoreImage retrieves the stored image for a store.
func (s *StoreService) GetStoreImage(ctx context.Context, id string) (*domain.Image, error) {
	image, err := s.repo.GetImage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get store image: %w", err)
	}
	return image, nil
}

// ImportStores bulk-inserts stores and returns how many were created.
// Rows that fail validation or collide with existing names are skipped and
// reported back by name.
func (s *StoreService) ImportStores(ctx context.Context, inputs []CreateStoreInput) (int, []string, error) {
	if len(inputs) == 0 {
		return 0, nil, apperrors.InvalidInput("import payload is empty")
	}

	var (
		created int
		skipped []string
	)

	for i := range inputs {
		if _, err := s.CreateStore(ctx, &inputs[i], nil); err != nil {
			s.logger.WarnContext(ctx, "skipping store import row",
				slog.String("name", inputs[i].Name),
				slog.String("error", err.Error()),
			)
			skipped = append(skipped, inputs[i].Name)
			continue
		}
		created++
	}

	s.logger.InfoContext(ctx, "stores imported",
		slog.Int("created", created),
		slog.Int("skipped", len(skipped)),
	)

	return created, skipped, nil
}
