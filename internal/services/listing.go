package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"foodshare-backend/internal/apperr"
	"foodshare-backend/internal/models"
	"foodshare-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

// ListingService owns the listing lifecycle: creation, the
// available -> claimed -> completed state machine, and the
// notifications both transitions raise.
type ListingService struct {
	listings      ListingStore
	notifications NotificationStore
	users         UserStore
	publisher     Publisher
	storage       storage.Storage

	allowDeleteAfterClaim bool
}

// NewListingService creates a new listing service
func NewListingService(
	listings ListingStore,
	notifications NotificationStore,
	users UserStore,
	publisher Publisher,
	store storage.Storage,
	allowDeleteAfterClaim bool,
) *ListingService {
	return &ListingService{
		listings:              listings,
		notifications:         notifications,
		users:                 users,
		publisher:             publisher,
		storage:               store,
		allowDeleteAfterClaim: allowDeleteAfterClaim,
	}
}

// CreateListingInput carries the fields for a new listing.
type CreateListingInput struct {
	Name        string
	Description string
	Address     string
	Latitude    *float64
	Longitude   *float64

	// Photo is optional; ContentType must be an accepted image type
	// when Photo is set.
	Photo            io.Reader
	PhotoContentType string
}

// UpdateListingInput carries a partial update; nil fields are left as is.
type UpdateListingInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func validateName(name string) error {
	if name == "" {
		return apperr.Validation("name", "is required")
	}
	if len(name) > maxNameLen {
		return apperr.Validation("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	}
	return nil
}

func validateAddress(address string) error {
	if address == "" {
		return apperr.Validation("address", "is required")
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLen {
		return apperr.Validation("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	}
	return nil
}

// Create validates and stores a new listing, then broadcasts a
// food_shared event to every connected client.
func (s *ListingService) Create(ctx context.Context, donorID string, input CreateListingInput) (*models.Listing, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if err := validateAddress(input.Address); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, apperr.Validation("coordinates", "latitude and longitude must both be set")
	}

	var photoURL *string
	if input.Photo != nil {
		url, err := s.storage.Save(ctx, input.PhotoContentType, input.Photo)
		if err != nil {
			return nil, apperr.Validation("photo", err.Error())
		}
		photoURL = &url
	}

	now := time.Now()
	listing := &models.Listing{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		PhotoURL:    photoURL,
		Address:     input.Address,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Status:      models.StatusAvailable,
		DonorID:     donorID,
		ExpiresAt:   now.Add(models.ListingTTL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("New food shared: %s", listing.Name)
	if donor, err := s.users.GetByID(ctx, donorID); err == nil {
		message = fmt.Sprintf("%s shared: %s", donor.Name, listing.Name)
	}
	s.publisher.BroadcastAll(Event{
		Type:    string(models.NotificationFoodShared),
		Message: message,
		Data:    listing,
	})

	return listing, nil
}

// Get retrieves a single listing
func (s *ListingService) Get(ctx context.Context, id string) (*models.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// ListAvailable retrieves available listings, newest first
func (s *ListingService) ListAvailable(ctx context.Context) ([]*models.Listing, error) {
	return s.listings.ListAvailable(ctx)
}

// ListAll retrieves all listings, newest first
func (s *ListingService) ListAll(ctx context.Context) ([]*models.Listing, error) {
	return s.listings.ListAll(ctx)
}

// ListByDonor retrieves a user's own listings
func (s *ListingService) ListByDonor(ctx context.Context, userID string) ([]*models.Listing, error) {
	return s.listings.ListByDonor(ctx, userID)
}

// ListByClaimer retrieves the listings a user has claimed
func (s *ListingService) ListByClaimer(ctx context.Context, userID string) ([]*models.Listing, error) {
	return s.listings.ListByClaimer(ctx, userID)
}

// Stats returns aggregate counts of a user's sharing activity
func (s *ListingService) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	return s.listings.Stats(ctx, userID)
}

// Update applies a donor's partial update to a listing.
func (s *ListingService) Update(ctx context.Context, id, callerID string, input UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.DonorID != callerID {
		return nil, fmt.Errorf("only the donor may update a listing: %w", apperr.ErrForbidden)
	}

	if input.Name != nil {
		if err := validateName(*input.Name); err != nil {
			return nil, err
		}
		listing.Name = *input.Name
	}
	if input.Address != nil {
		if err := validateAddress(*input.Address); err != nil {
			return nil, err
		}
		listing.Address = *input.Address
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
		listing.Description = *input.Description
	}
	if input.Latitude != nil {
		listing.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		listing.Longitude = input.Longitude
	}
	if (listing.Latitude == nil) != (listing.Longitude == nil) {
		return nil, apperr.Validation("coordinates", "latitude and longitude must both be set")
	}

	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes a donor's listing. Deleting after a claim is allowed
// only when the service is configured for it.
func (s *ListingService) Delete(ctx context.Context, id, callerID string) error {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.DonorID != callerID {
		return fmt.Errorf("only the donor may delete a listing: %w", apperr.ErrForbidden)
	}
	if !s.allowDeleteAfterClaim && listing.Status != models.StatusAvailable {
		return fmt.Errorf("cannot delete a claimed listing: %w", apperr.ErrInvalidState)
	}

	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}

	if listing.PhotoURL != nil {
		if err := s.storage.Remove(ctx, *listing.PhotoURL); err != nil {
			log.Warn().Err(err).Str("listing_id", id).Msg("Failed to remove listing photo")
		}
	}
	return nil
}

// Claim transitions a listing from available to claimed on behalf of
// claimerID. The status check and the write are one atomic conditional
// update, so concurrent claims on the same listing produce exactly one
// winner; every other caller gets ErrInvalidState.
func (s *ListingService) Claim(ctx context.Context, listingID, claimerID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != models.StatusAvailable {
		return nil, fmt.Errorf("listing already claimed: %w", apperr.ErrInvalidState)
	}
	if listing.DonorID == claimerID {
		return nil, fmt.Errorf("cannot claim own listing: %w", apperr.ErrForbidden)
	}

	claimed, err := s.listings.Claim(ctx, listingID, claimerID)
	if err != nil {
		return nil, err
	}

	claimerName := "Someone"
	if claimer, err := s.users.GetByID(ctx, claimerID); err == nil {
		claimerName = claimer.Name
	}
	message := fmt.Sprintf("%s wants to pick up %s", claimerName, claimed.Name)
	s.notify(ctx, claimed.DonorID, models.NotificationClaimRequest, message, claimed, claimerID)

	return claimed, nil
}

// Complete transitions a listing from claimed to completed. Only the
// donor may complete a pickup.
func (s *ListingService) Complete(ctx context.Context, listingID, callerID string) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.DonorID != callerID {
		return nil, fmt.Errorf("only the donor may complete a listing: %w", apperr.ErrForbidden)
	}
	if listing.Status != models.StatusClaimed {
		return nil, fmt.Errorf("listing is not claimed: %w", apperr.ErrInvalidState)
	}

	completed, err := s.listings.Complete(ctx, listingID, callerID)
	if err != nil {
		return nil, err
	}

	if completed.ClaimerID != nil {
		message := fmt.Sprintf("Pickup of %s is completed", completed.Name)
		s.notify(ctx, *completed.ClaimerID, models.NotificationFoodCompleted, message, completed, callerID)
	}

	return completed, nil
}

// notify persists a notification and pushes it to the recipient's
// active connections. Failures never reach the HTTP caller: the
// lifecycle transition has already been persisted.
func (s *ListingService) notify(ctx context.Context, recipientID string, typ models.NotificationType, message string, listing *models.Listing, actorID string) {
	n := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        typ,
		Message:     message,
		ListingID:   &listing.ID,
		ActorID:     &actorID,
		CreatedAt:   time.Now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Error().Err(err).
			Str("recipient_id", recipientID).
			Str("listing_id", listing.ID).
			Str("type", string(typ)).
			Msg("Failed to create notification")
		return
	}

	// Enrich the pushed copy so the client can render it without a
	// refetch; the notification list stays the source of truth.
	n.ListingName = &listing.Name
	n.ListingPhoto = listing.PhotoURL
	if actor, err := s.users.GetByID(ctx, actorID); err == nil {
		n.ActorName = &actor.Name
		n.ActorAvatar = actor.Avatar
	}

	s.publisher.PushToUser(recipientID, Event{
		Type:    "notification",
		Message: message,
		Data:    n,
	})
}
