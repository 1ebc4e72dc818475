package models

import "time"

// ListingStatus is the lifecycle state of a food listing.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusClaimed   ListingStatus = "claimed"
	StatusCompleted ListingStatus = "completed"
)

// NotificationType classifies a notification for the client UI.
type NotificationType string

const (
	NotificationClaimRequest  NotificationType = "claim_request"
	NotificationFoodShared    NotificationType = "food_shared"
	NotificationClaimAccepted NotificationType = "claim_accepted"
	NotificationFoodCompleted NotificationType = "food_completed"
)

// ListingTTL is how long a listing stays offered after creation.
const ListingTTL = 24 * time.Hour

// User represents a registered user
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Avatar       *string   `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Listing represents a shared food entry
type Listing struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	PhotoURL    *string       `json:"photo_url"`
	Address     string        `json:"address"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Status      ListingStatus `json:"status"`
	DonorID     string        `json:"donor_id"`
	ClaimerID   *string       `json:"claimer_id"`
	ExpiresAt   time.Time     `json:"expires_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Notification represents an in-app notification for a user
type Notification struct {
	ID          string           `json:"id"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Message     string           `json:"message"`
	ListingID   *string          `json:"listing_id,omitempty"`
	ActorID     *string          `json:"actor_id,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`

	// Read-time enrichment, never persisted.
	ListingName  *string `json:"listing_name,omitempty"`
	ListingPhoto *string `json:"listing_photo,omitempty"`
	ActorName    *string `json:"actor_name,omitempty"`
	ActorAvatar  *string `json:"actor_avatar,omitempty"`
}

// UserStats aggregates a user's sharing activity
type UserStats struct {
	Shared             int `json:"shared"`
	Claimed            int `json:"claimed"`
	CompletedAsDonor   int `json:"completed_as_donor"`
	CompletedAsClaimer int `json:"completed_as_claimer"`
	Total              int `json:"total"`
}
