package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/giacuong333/marketplace/internal/domain"
	pkgkafka "github.com/giacuong333/marketplace/pkg/kafka"
)

// Kafka topic constants for marketplace domain events.
const (
	TopicUserRegistered  = "marketplace.user.registered"
	TopicUserUpdated     = "marketplace.user.updated"
	TopicStoreCreated    = "marketplace.store.created"
	TopicStoreUpdated    = "marketplace.store.updated"
	TopicStoreDeleted    = "marketplace.store.deleted"
	TopicCategoryCreated = "marketplace.category.created"
	TopicCategoryUpdated = "marketplace.category.updated"
	TopicCategoryDeleted = "marketplace.category.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeUser     = "user"
	AggregateTypeStore    = "store"
	AggregateTypeCategory = "category"
)

// Source identifier for events originating from the admin API.
const SourceAdminAPI = "admin-api"

// UserData is the payload for user lifecycle events.
type UserData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

// StoreData is the payload for store lifecycle events.
type StoreData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
}

// CategoryData is the payload for service category lifecycle events.
type CategoryData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status string `json:"status"`
}

// DeletedData is the payload for deletion events.
type DeletedData struct {
	IDs []string `json:"ids"`
}

// Producer publishes marketplace domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the admin API.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishUserUpdated publishes a user.updated event.
func (p *Producer) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	data := UserData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
	}
	return p.publish(ctx, TopicUserUpdated, user.ID, AggregateTypeUser, data)
}

// PublishStoreCreated publishes a store.created event.
func (p *Producer) PublishStoreCreated(ctx context.Context, store *domain.Store) error {
	return p.publish(ctx, TopicStoreCreated, store.ID, AggregateTypeStore, storeData(store))
}

// PublishStoreUpdated publishes a store.updated event.
func (p *Producer) PublishStoreUpdated(ctx context.Context, store *domain.Store) error {
	return p.publish(ctx, TopicStoreUpdated, store.ID, AggregateTypeStore, storeData(store))
}

// PublishStoreDeleted publishes a store.deleted event covering one or more stores.
func (p *Producer) PublishStoreDeleted(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return p.publish(ctx, TopicStoreDeleted, ids[0], AggregateTypeStore, DeletedData{IDs: ids})
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, category *domain.ServiceCategory) error {
	return p.publish(ctx, TopicCategoryCreated, category.ID, AggregateTypeCategory, categoryData(category))
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, category *domain.ServiceCategory) error {
	return p.publish(ctx, TopicCategoryUpdated, category.ID, AggregateTypeCategory, categoryData(category))
}

// PublishCategoryDeleted publishes a category.deleted event covering one or more categories.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return p.publish(ctx, TopicCategoryDeleted, ids[0], AggregateTypeCategory, DeletedData{IDs: ids})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAdminAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

func storeData(s *domain.Store) StoreData {
	return StoreData{
		ID:      s.ID,
		Name:    s.Name,
		Slug:    s.Slug,
		Status:  s.Status,
		Address: s.Address,
	}
}

func categoryData(c *domain.ServiceCategory) CategoryData {
	return CategoryData{
		ID:     c.ID,
		Name:   c.Name,
		Slug:   c.Slug,
		Status: c.Status,
	}
}
