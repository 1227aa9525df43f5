package models

import (
	"time"
)

const (
	BookingTypeOnsite = "onsite"
	BookingTypeOnline = "online"
)

// Party holds the denormalized counterparty display fields joined into
// booking list rows.
type Party struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	AvatarPath *string `json:"avatar_path,omitempty"`
}

// OnsiteBooking is a request for a physical service at a location.
type OnsiteBooking struct {
	ID              int        `json:"id"`
	ClientID        int        `json:"client_id"`
	ProviderID      int        `json:"provider_id"`
	ServiceID       int        `json:"service_id"`
	ServiceTitle    string     `json:"service_title"`
	ServiceCategory string     `json:"service_category"`
	Location        string     `json:"location"`
	Governorate     string     `json:"governorate"`
	Urgent          bool       `json:"urgent"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	ClientNotes     string     `json:"client_notes,omitempty"`
	ProviderNotes   *string    `json:"provider_notes,omitempty"`
	Status          string     `json:"status"`
	Client          Party      `json:"client"`
	Provider        Party      `json:"provider"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// OnlineBooking is a request for remote work on a described project.
type OnlineBooking struct {
	ID                 int        `json:"id"`
	ClientID           int        `json:"client_id"`
	ProviderID         int        `json:"provider_id"`
	ServiceID          int        `json:"service_id"`
	ServiceTitle       string     `json:"service_title"`
	ServiceCategory    string     `json:"service_category"`
	ProjectTitle       string     `json:"project_title"`
	ProjectDescription string     `json:"project_description"`
	BudgetRange        string     `json:"budget_range"`
	Timeline           string     `json:"timeline"`
	ClientNotes        string     `json:"client_notes,omitempty"`
	ProviderNotes      *string    `json:"provider_notes,omitempty"`
	Status             string     `json:"status"`
	Client             Party      `json:"client"`
	Provider           Party      `json:"provider"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// BookingListItem wraps one booking of either variant for the merged,
// newest-first list the booking screens consume.
type BookingListItem struct {
	BookingType string         `json:"booking_type"`
	Onsite      *OnsiteBooking `json:"onsite,omitempty"`
	Online      *OnlineBooking `json:"online,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// BookingListFilter scopes a list read to one side of the bookings and
// optionally narrows by status and variant. Role is "client" or "provider",
// never both in one query.
type BookingListFilter struct {
	UserID      int    `json:"user_id"`
	Role        string `json:"role"`
	Status      string `json:"status,omitempty"`
	BookingType string `json:"booking_type,omitempty"`
}

type TransitionRequest struct {
	Status        string  `json:"status"`
	ProviderNotes *string `json:"provider_notes,omitempty"`
}
