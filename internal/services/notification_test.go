package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"foodshare-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, store *memNotificationStore, recipient string, createdAt time.Time) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipient,
		Type:        models.NotificationClaimRequest,
		Message:     "someone wants your food",
		CreatedAt:   createdAt,
	}
	require.NoError(t, store.Create(context.Background(), n))
	return n
}

func TestListForUser(t *testing.T) {
	store := newMemNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 3; i++ {
		seedNotification(t, store, "alice", base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, store, "bob", base)

	notifications, unread, err := svc.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	assert.Equal(t, 3, unread)

	// Newest first.
	for i := 1; i < len(notifications); i++ {
		assert.True(t, !notifications[i-1].CreatedAt.Before(notifications[i].CreatedAt))
	}
}

func TestListForUserLimit(t *testing.T) {
	store := newMemNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 60; i++ {
		seedNotification(t, store, "alice", base.Add(time.Duration(i)*time.Second))
	}

	notifications, _, err := svc.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Len(t, notifications, 50)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	store := newMemNotificationStore()
	svc := NewNotificationService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedNotification(t, store, "alice", time.Now())
	}
	seedNotification(t, store, "bob", time.Now())

	_, unread, err := svc.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	require.Equal(t, 5, unread)

	require.NoError(t, svc.MarkAllRead(ctx, "alice"))
	_, unread, err = svc.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	// A second call is a no-op, not an error.
	require.NoError(t, svc.MarkAllRead(ctx, "alice"))
	_, unread, err = svc.ListForUser(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	// Another user's notifications are untouched.
	_, bobUnread, err := svc.ListForUser(ctx, "bob", 50)
	require.NoError(t, err)
	assert.Equal(t, 1, bobUnread)
}

func TestMarkAllReadEmpty(t *testing.T) {
	svc := NewNotificationService(newMemNotificationStore())
	assert.NoError(t, svc.MarkAllRead(context.Background(), fmt.Sprintf("user-%s", uuid.New())))
}
