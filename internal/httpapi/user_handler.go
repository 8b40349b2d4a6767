package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/user"
)

type UserHandler struct {
	users   *user.Service
	auth    *Auth
	timeout time.Duration
}

func NewUserHandler(users *user.Service, auth *Auth, timeout time.Duration) *UserHandler {
	return &UserHandler{users: users, auth: auth, timeout: timeout}
}

type registerRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm_password"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req registerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	// validation failures are caught before any store call
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}
	if req.Confirm != "" && req.Confirm != req.Password {
		respondError(w, http.StatusBadRequest, "password_mismatch", "passwords do not match")
		return
	}

	u, err := h.users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, u)
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req loginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	token, err := h.auth.IssueToken(u.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  u,
		"token": token,
	})
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := h.ownUserID(w, r)
	if !ok {
		return
	}

	u, err := h.users.Get(ctx, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// UpdateAddress saves the shipping address. The response body is the stored
// record, so a failed save never shows as applied.
func (h *UserHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := h.ownUserID(w, r)
	if !ok {
		return
	}

	var addr domain.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if addr.Line1 == "" || addr.City == "" || addr.Country == "" {
		respondError(w, http.StatusBadRequest, "invalid_address", "line1, city and country are required")
		return
	}

	u, err := h.users.SaveAddress(ctx, id, addr)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, u)
}

// ownUserID checks the path id against the authenticated user: profile and
// address are owner-only.
func (h *UserHandler) ownUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return "", false
	}

	if pathID := chi.URLParam(r, "id"); pathID != "" && pathID != userID {
		respondError(w, http.StatusForbidden, "forbidden", "cannot access another user's record")
		return "", false
	}
	return userID, true
}
