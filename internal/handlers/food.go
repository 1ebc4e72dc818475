package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"foodshare-backend/internal/middleware"
	"foodshare-backend/internal/models"
	"foodshare-backend/internal/services"
	"foodshare-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FoodHandler handles listing-related HTTP requests
type FoodHandler struct {
	listingService *services.ListingService
}

// NewFoodHandler creates a new food handler
func NewFoodHandler(listingService *services.ListingService) *FoodHandler {
	return &FoodHandler{listingService: listingService}
}

// ListAvailable handles GET /api/v1/food
func (h *FoodHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.ListAvailable(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}

// ListAll handles GET /api/v1/food/all
func (h *FoodHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}

// Get handles GET /api/v1/food/{id}
func (h *FoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// Create handles POST /api/v1/food (multipart form with optional photo)
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	input := services.CreateListingInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
	}

	if lat := r.FormValue("latitude"); lat != "" {
		v, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			respondError(w, "Invalid latitude", http.StatusBadRequest)
			return
		}
		input.Latitude = &v
	}
	if lng := r.FormValue("longitude"); lng != "" {
		v, err := strconv.ParseFloat(lng, 64)
		if err != nil {
			respondError(w, "Invalid longitude", http.StatusBadRequest)
			return
		}
		input.Longitude = &v
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		if header.Size > storage.MaxUploadSize {
			respondError(w, "Photo exceeds 5MB limit", http.StatusBadRequest)
			return
		}
		input.Photo = file
		input.PhotoContentType = header.Header.Get("Content-Type")
	}

	listing, err := h.listingService.Create(ctx, userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("listing_id", listing.ID).
		Str("donor_id", userID).
		Str("name", listing.Name).
		Msg("Listing created")

	respondJSON(w, http.StatusCreated, listing)
}

// Update handles PUT /api/v1/food/{id}
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	listingID := chi.URLParam(r, "id")

	var input services.UpdateListingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	listing, err := h.listingService.Update(ctx, listingID, userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("listing_id", listingID).Str("user_id", userID).Msg("Listing updated")
	respondJSON(w, http.StatusOK, listing)
}

// Delete handles DELETE /api/v1/food/{id}
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	listingID := chi.URLParam(r, "id")

	if err := h.listingService.Delete(ctx, listingID, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("listing_id", listingID).Str("user_id", userID).Msg("Listing deleted")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Listing deleted"})
}

// Claim handles POST /api/v1/food/{id}/claim
func (h *FoodHandler) Claim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	listingID := chi.URLParam(r, "id")

	listing, err := h.listingService.Claim(ctx, listingID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("listing_id", listingID).
		Str("claimer_id", userID).
		Msg("Listing claimed")

	respondJSON(w, http.StatusOK, listing)
}

// Complete handles PUT /api/v1/food/{id}/complete
func (h *FoodHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	listingID := chi.URLParam(r, "id")

	listing, err := h.listingService.Complete(ctx, listingID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("listing_id", listingID).
		Str("donor_id", userID).
		Msg("Listing completed")

	respondJSON(w, http.StatusOK, listing)
}
