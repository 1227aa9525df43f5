package services

import (
	"context"

	"khidmaBack/internal/models"
)

type NotificationReadStore interface {
	ListByUser(ctx context.Context, userID int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) error
}

type NotificationService struct {
	NotificationRepo NotificationReadStore
}

// List returns the newest notifications for the user (capped by the store)
// together with the unread count the badge shows.
func (s *NotificationService) List(ctx context.Context, userID int) (models.NotificationListResponse, error) {
	notifications, err := s.NotificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return models.NotificationListResponse{}, err
	}
	unread, err := s.NotificationRepo.UnreadCount(ctx, userID)
	if err != nil {
		return models.NotificationListResponse{}, err
	}
	return models.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unread,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.NotificationRepo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID int) error {
	return s.NotificationRepo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	return s.NotificationRepo.MarkAllRead(ctx, userID)
}
