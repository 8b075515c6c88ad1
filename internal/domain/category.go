package domain

import (
	"time"
)

// ServiceCategory represents a category of service offered on the marketplace.
type ServiceCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	ImageName *string   `json:"image_name,omitempty"`
	ImageType *string   `json:"image_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
