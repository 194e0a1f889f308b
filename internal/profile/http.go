package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/codecrafters-dev/platform/internal/auth"
	httperrors "github.com/codecrafters-dev/platform/pkg/http/errors"
)

// HTTPHandlers exposes profile pages and bio edits.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "profile_http").Logger(),
	}
}

// ListUsernames handles GET /v1/users
func (h *HTTPHandlers) ListUsernames(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.ListUsernames(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list usernames")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeProfileFetch, "Could not list users")
		return
	}
	respondJSON(w, http.StatusOK, UsernamesResponse{Usernames: names})
}

// Get handles GET /v1/users/{username}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	profile, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		h.respondLookupError(w, err, username)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Challenges handles GET /v1/users/{username}/challenges
func (h *HTTPHandlers) Challenges(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	items, err := h.service.ChallengesByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.respondLookupError(w, err, username)
			return
		}
		h.logger.Error().Err(err).Str("username", username).Msg("failed to list user challenges")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeChallengesFetch, "Could not load challenges")
		return
	}
	respondJSON(w, http.StatusOK, ChallengesResponse{Username: username, Challenges: items})
}

// EditAbout handles PUT /v1/users/{username}/about
func (h *HTTPHandlers) EditAbout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req EditAboutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	username := r.PathValue("username")
	profile, err := h.service.EditAbout(r.Context(), claims.UserID, username, req.About)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, profile)
	case errors.Is(err, ErrNotOwner):
		httperrors.RespondForbidden(w, httperrors.ErrCodeNotProfileOwner, "You can only edit your own bio")
	case errors.Is(err, ErrUserNotFound):
		h.respondLookupError(w, err, username)
	default:
		h.logger.Error().Err(err).Str("username", username).Msg("failed to update bio")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeBioUpdateFailed, "Could not update bio")
	}
}

func (h *HTTPHandlers) respondLookupError(w http.ResponseWriter, err error, username string) {
	if errors.Is(err, ErrUserNotFound) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUserNotFound, "User not found")
		return
	}
	h.logger.Error().Err(err).Str("username", username).Msg("failed to load profile")
	httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeProfileFetch, "Could not load profile")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
