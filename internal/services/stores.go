package services

import (
	"context"

	"foodshare-backend/internal/models"
)

// ListingStore persists food listings. The repository package provides
// the Postgres implementation; tests use an in-memory one.
type ListingStore interface {
	Create(ctx context.Context, l *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	ListAvailable(ctx context.Context) ([]*models.Listing, error)
	ListAll(ctx context.Context) ([]*models.Listing, error)
	ListByDonor(ctx context.Context, userID string) ([]*models.Listing, error)
	ListByClaimer(ctx context.Context, userID string) ([]*models.Listing, error)
	Update(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, id string) error
	Claim(ctx context.Context, id, claimerID string) (*models.Listing, error)
	Complete(ctx context.Context, id, donorID string) (*models.Listing, error)
	Stats(ctx context.Context, userID string) (*models.UserStats, error)
}

// NotificationStore persists per-user notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	NameExists(ctx context.Context, name string) (bool, error)
}
