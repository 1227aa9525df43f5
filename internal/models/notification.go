package models

import "time"

const (
	NotifBookingCreated   = "booking_created"
	NotifBookingConfirmed = "booking_confirmed"
	NotifBookingDeclined  = "booking_declined"
	NotifBookingCompleted = "booking_completed"
	NotifBookingCancelled = "booking_cancelled"
)

type Notification struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	BookingID   int       `json:"booking_id"`
	BookingType string    `json:"booking_type"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
