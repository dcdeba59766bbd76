package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Admin *admin.AdminUser `json:"admin"`
}

// AuthHandler serves admin sign-in and sign-out. A successful sign-in still
// requires the identity to be on the allow-list; anyone else has their fresh
// session terminated immediately.
type AuthHandler struct {
	service   auth.Service
	allowlist admin.Allowlist
	validate  *validator.Validate
}

func NewAuthHandler(service auth.Service, allowlist admin.Allowlist) *AuthHandler {
	return &AuthHandler{service: service, allowlist: allowlist, validate: validator.New()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	session, err := h.service.SignIn(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error().Err(err).Msg("Failed to sign in")
		respondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	adminUser, err := h.allowlist.Get(r.Context(), session.UserID)
	if err != nil {
		if signOutErr := h.service.SignOut(r.Context(), session.Token); signOutErr != nil {
			log.Error().Err(signOutErr).Msg("Failed to terminate non-admin session after login")
		}
		if errors.Is(err, admin.ErrNotAllowlisted) {
			respondWithError(w, http.StatusForbidden, "Not authorized for the admin area")
			return
		}
		log.Error().Err(err).Msg("Failed to check admin allow-list during login")
		respondWithError(w, http.StatusForbidden, "Not authorized for the admin area")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.Token.String(),
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondWithJSON(w, http.StatusOK, LoginResponse{Admin: adminUser})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token != uuid.Nil {
		if err := h.service.SignOut(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("Failed to sign out")
			respondWithError(w, http.StatusInternalServerError, "Failed to sign out")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}
