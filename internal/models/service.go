package models

import "time"

// Service is a provider's catalog entry that bookings reference. The
// category and title are snapshotted onto bookings at creation time.
type Service struct {
	ID          int        `json:"id"`
	ProviderID  int        `json:"provider_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Online      bool       `json:"online"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
