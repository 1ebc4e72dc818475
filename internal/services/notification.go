package services

import (
	"context"

	"foodshare-backend/internal/models"
)

// NotificationService handles notification reads for users
type NotificationService struct {
	notifications NotificationStore
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListForUser returns a user's latest notifications together with the
// unread count.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]*models.Notification, int, error) {
	notifications, err := s.notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkAllRead marks every notification of a user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}
