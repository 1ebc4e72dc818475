package handlers

import (
	"encoding/json"
	"net/http"

	"foodshare-backend/internal/middleware"
	"foodshare-backend/internal/models"
	"foodshare-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService    *services.UserService
	listingService *services.ListingService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, listingService *services.ListingService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		listingService: listingService,
	}
}

type credentialsRequest struct {
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Avatar   *string `json:"avatar,omitempty"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Register(r.Context(), req.Name, req.Password, req.Avatar)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("name", user.Name).Msg("User registered")
	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /api/v1/users/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Stats handles GET /api/v1/users/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	stats, err := h.listingService.Stats(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// MyFood handles GET /api/v1/users/my-food
func (h *UserHandler) MyFood(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	listings, err := h.listingService.ListByDonor(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}

// MyClaims handles GET /api/v1/users/my-claims
func (h *UserHandler) MyClaims(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	listings, err := h.listingService.ListByClaimer(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if listings == nil {
		listings = []*models.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}
