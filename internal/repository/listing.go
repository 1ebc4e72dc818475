package repository

import (
	"context"
	"fmt"

	"foodshare-backend/internal/apperr"
	"foodshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const listingColumns = `id, name, description, photo_url, address, latitude, longitude,
	status, donor_id, claimer_id, expires_at, created_at, updated_at`

// ListingRepository handles database operations for listings
type ListingRepository struct {
	db *pgxpool.Pool
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db}
}

func scanListing(row pgx.Row) (*models.Listing, error) {
	var l models.Listing
	err := row.Scan(
		&l.ID, &l.Name, &l.Description, &l.PhotoURL, &l.Address, &l.Latitude, &l.Longitude,
		&l.Status, &l.DonorID, &l.ClaimerID, &l.ExpiresAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]*models.Listing, error) {
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}
	return listings, nil
}

// Create creates a new listing
func (r *ListingRepository) Create(ctx context.Context, l *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.Name, l.Description, l.PhotoURL, l.Address, l.Latitude, l.Longitude,
		l.Status, l.DonorID, l.ClaimerID, l.ExpiresAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetByID retrieves a listing by ID
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("listing %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return l, nil
}

// ListAvailable retrieves all available listings, newest first
func (r *ListingRepository) ListAvailable(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE status = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list available listings: %w", err)
	}
	return collectListings(rows)
}

// ListAll retrieves all listings regardless of status, newest first
func (r *ListingRepository) ListAll(ctx context.Context) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return collectListings(rows)
}

// ListByDonor retrieves listings created by a user, newest first
func (r *ListingRepository) ListByDonor(ctx context.Context, userID string) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE donor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by donor: %w", err)
	}
	return collectListings(rows)
}

// ListByClaimer retrieves listings claimed by a user, newest first
func (r *ListingRepository) ListByClaimer(ctx context.Context, userID string) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM listings
		WHERE claimer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings by claimer: %w", err)
	}
	return collectListings(rows)
}

// Update persists the mutable fields of a listing
func (r *ListingRepository) Update(ctx context.Context, l *models.Listing) error {
	query := `
		UPDATE listings
		SET name = $2, description = $3, photo_url = $4, address = $5,
		    latitude = $6, longitude = $7, updated_at = now()
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		l.ID, l.Name, l.Description, l.PhotoURL, l.Address, l.Latitude, l.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", l.ID, apperr.ErrNotFound)
	}
	return nil
}

// Delete removes a listing
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Claim atomically transitions a listing from available to claimed.
// The status check and the write are a single conditional update, so
// of two concurrent claims exactly one sees the row while it is still
// available; the loser gets ErrInvalidState.
func (r *ListingRepository) Claim(ctx context.Context, id, claimerID string) (*models.Listing, error) {
	query := `
		UPDATE listings
		SET status = $3, claimer_id = $2, updated_at = now()
		WHERE id = $1 AND status = $4 AND donor_id <> $2
		RETURNING ` + listingColumns
	l, err := scanListing(r.db.QueryRow(ctx, query, id, claimerID, models.StatusClaimed, models.StatusAvailable))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("listing already claimed: %w", apperr.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to claim listing: %w", err)
	}
	return l, nil
}

// Complete atomically transitions a listing from claimed to completed.
// Only the donor may complete, and only from the claimed state.
func (r *ListingRepository) Complete(ctx context.Context, id, donorID string) (*models.Listing, error) {
	query := `
		UPDATE listings
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $4 AND donor_id = $2
		RETURNING ` + listingColumns
	l, err := scanListing(r.db.QueryRow(ctx, query, id, donorID, models.StatusCompleted, models.StatusClaimed))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("listing not claimed: %w", apperr.ErrInvalidState)
		}
		return nil, fmt.Errorf("failed to complete listing: %w", err)
	}
	return l, nil
}

// Stats returns aggregate counts of a user's sharing activity
func (r *ListingRepository) Stats(ctx context.Context, userID string) (*models.UserStats, error) {
	query := `
		SELECT
			count(*) FILTER (WHERE donor_id = $1),
			count(*) FILTER (WHERE claimer_id = $1),
			count(*) FILTER (WHERE donor_id = $1 AND status = $2),
			count(*) FILTER (WHERE claimer_id = $1 AND status = $2)
		FROM listings
		WHERE donor_id = $1 OR claimer_id = $1
	`
	var stats models.UserStats
	err := r.db.QueryRow(ctx, query, userID, models.StatusCompleted).Scan(
		&stats.Shared, &stats.Claimed, &stats.CompletedAsDonor, &stats.CompletedAsClaimer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	stats.Total = stats.Shared + stats.Claimed
	return &stats, nil
}
