package repository

import (
	"context"
	"time"

	"github.com/giacuong333/marketplace/internal/domain"
)

// ListFilter defines filter criteria shared by paginated list queries.
type ListFilter struct {
	Search   *string
	Status   *string
	SortBy   string
	SortDesc bool
	Page     int
	PerPage  int
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user into the store.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users matching the given filter along with the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.User, int, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their identifier.
	Delete(ctx context.Context, id string) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// RevokeByUserID revokes all refresh tokens for the given user.
	RevokeByUserID(ctx context.Context, userID string) error

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error
}

// TokenDenylist records revoked access tokens until their natural expiry.
type TokenDenylist interface {
	// Add denylists a token for the given time-to-live.
	Add(ctx context.Context, token string, ttl time.Duration) error

	// Contains reports whether the token has been denylisted.
	Contains(ctx context.Context, token string) (bool, error)
}

// StoreRepository defines the interface for store persistence operations.
type StoreRepository interface {
	// Create inserts a new store record, including any image payload.
	Create(ctx context.Context, store *domain.Store, image *domain.Image) error

	// GetByID retrieves a store by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Store, error)

	// List returns stores matching the given filter along with the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.Store, int, error)

	// Update modifies an existing store; a non-nil image replaces the stored one.
	Update(ctx context.Context, store *domain.Store, image *domain.Image) error

	// Delete removes a store by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes all stores whose IDs are in the given list and
	// returns the number of rows removed.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// GetImage retrieves the stored image for a store.
	GetImage(ctx context.Context, id string) (*domain.Image, error)
}

// CategoryRepository defines the interface for service category persistence operations.
type CategoryRepository interface {
	// Create inserts a new service category, including any image payload.
	Create(ctx context.Context, category *domain.ServiceCategory, image *domain.Image) error

	// GetByID retrieves a service category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.ServiceCategory, error)

	// List returns categories matching the given filter along with the total count.
	List(ctx context.Context, filter ListFilter) ([]domain.ServiceCategory, int, error)

	// Update modifies an existing category; a non-nil image replaces the stored one.
	Update(ctx context.Context, category *domain.ServiceCategory, image *domain.Image) error

	// Delete removes a service category by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteMany removes all categories whose IDs are in the given list and
	// returns the number of rows removed.
	DeleteMany(ctx context.Context, ids []string) (int, error)

	// GetImage retrieves the stored image for a service category.
	GetImage(ctx context.Context, id string) (*domain.Image, error)
}
