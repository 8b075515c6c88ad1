package domain

import (
	"time"
)

// Store status constants.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// IsValidStatus checks whether the given status is one a store or
// service category may carry.
func IsValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// Store represents a service store listed on the marketplace.
type Store struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	OpenTime    string    `json:"open_time,omitempty"`
	CloseTime   string    `json:"close_time,omitempty"`
	Status      string    `json:"status"`
	OwnerID     *string   `json:"owner_id,omitempty"`
	ImageName   *string   `json:"image_name,omitempty"`
	ImageType   *string   `json:"image_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
