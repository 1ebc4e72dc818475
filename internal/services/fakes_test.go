package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"foodshare-backend/internal/apperr"
	"foodshare-backend/internal/models"
)

// memListingStore is an in-memory ListingStore with the same
// conditional-update semantics as the Postgres repository.
type memListingStore struct {
	mu       sync.Mutex
	listings map[string]*models.Listing
}

func newMemListingStore() *memListingStore {
	return &memListingStore{listings: make(map[string]*models.Listing)}
}

func copyListing(l *models.Listing) *models.Listing {
	c := *l
	return &c
}

func (s *memListingStore) Create(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = copyListing(l)
	return nil
}

func (s *memListingStore) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, apperr.ErrNotFound)
	}
	return copyListing(l), nil
}

func (s *memListingStore) list(filter func(*models.Listing) bool) []*models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Listing
	for _, l := range s.listings {
		if filter(l) {
			out = append(out, copyListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *memListingStore) ListAvailable(ctx context.Context) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool { return l.Status == models.StatusAvailable }), nil
}

func (s *memListingStore) ListAll(ctx context.Context) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool { return true }), nil
}

func (s *memListingStore) ListByDonor(ctx context.Context, userID string) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool { return l.DonorID == userID }), nil
}

func (s *memListingStore) ListByClaimer(ctx context.Context, userID string) ([]*models.Listing, error) {
	return s.list(func(l *models.Listing) bool {
		return l.ClaimerID != nil && *l.ClaimerID == userID
	}), nil
}

func (s *memListingStore) Update(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.listings[l.ID]
	if !ok {
		return fmt.Errorf("listing %s: %w", l.ID, apperr.ErrNotFound)
	}
	cur.Name = l.Name
	cur.Description = l.Description
	cur.PhotoURL = l.PhotoURL
	cur.Address = l.Address
	cur.Latitude = l.Latitude
	cur.Longitude = l.Longitude
	return nil
}

func (s *memListingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return fmt.Errorf("listing %s: %w", id, apperr.ErrNotFound)
	}
	delete(s.listings, id)
	return nil
}

func (s *memListingStore) Claim(ctx context.Context, id, claimerID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.Status != models.StatusAvailable || l.DonorID == claimerID {
		return nil, fmt.Errorf("listing already claimed: %w", apperr.ErrInvalidState)
	}
	l.Status = models.StatusClaimed
	l.ClaimerID = &claimerID
	return copyListing(l), nil
}

func (s *memListingStore) Complete(ctx context.Context, id, donorID string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok || l.Status != models.StatusClaimed || l.DonorID != donorID {
		return nil, fmt.Errorf("listing not claimed: %w", apperr.ErrInvalidState)
	}
	l.Status = models.StatusCompleted
	return copyListing(l), nil
}

func (s *memListingStore) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats models.UserStats
	for _, l := range s.listings {
		if l.DonorID == userID {
			stats.Shared++
			if l.Status == models.StatusCompleted {
				stats.CompletedAsDonor++
			}
		}
		if l.ClaimerID != nil && *l.ClaimerID == userID {
			stats.Claimed++
			if l.Status == models.StatusCompleted {
				stats.CompletedAsClaimer++
			}
		}
	}
	stats.Total = stats.Shared + stats.Claimed
	return &stats, nil
}

// memNotificationStore is an in-memory NotificationStore.
type memNotificationStore struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newMemNotificationStore() *memNotificationStore {
	return &memNotificationStore{}
}

func (s *memNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *n
	s.notifications = append(s.notifications, &c)
	return nil
}

func (s *memNotificationStore) ListForUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.RecipientID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memNotificationStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if n.RecipientID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *memNotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n.RecipientID == userID {
			n.Read = true
		}
	}
	return nil
}

// memUserStore is an in-memory UserStore.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *user
	s.users[user.ID] = &c
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *memUserStore) GetByName(ctx context.Context, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Name == name {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", name, apperr.ErrNotFound)
}

func (s *memUserStore) NameExists(ctx context.Context, name string) (bool, error) {
	_, err := s.GetByName(ctx, name)
	return err == nil, nil
}

// recordingPublisher captures pushed and broadcast events.
type recordingPublisher struct {
	mu         sync.Mutex
	pushes     []recordedPush
	broadcasts []Event
}

type recordedPush struct {
	userID string
	event  Event
}

func (p *recordingPublisher) PushToUser(userID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, recordedPush{userID: userID, event: event})
}

func (p *recordingPublisher) BroadcastAll(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, event)
}

func (p *recordingPublisher) pushesTo(userID string) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, r := range p.pushes {
		if r.userID == userID {
			out = append(out, r.event)
		}
	}
	return out
}
