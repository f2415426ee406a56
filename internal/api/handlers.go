package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"graphlet/internal/middleware"
	"graphlet/internal/repository"
	"graphlet/internal/services/live"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Handler handles HTTP requests. Service interfaces it depends on are
// declared in this package (consumer-driven).
type Handler struct {
	auth       AuthService
	workspaces *repository.WorkspaceRepositoryImpl
	access     *repository.AccessRepositoryImpl
	tags       *repository.TagRepositoryImpl
	notes      *repository.NoteRepositoryImpl
	wsHandler  *live.WebSocketHandler
}

func NewHandler(
	auth AuthService,
	workspaces *repository.WorkspaceRepositoryImpl,
	access *repository.AccessRepositoryImpl,
	tags *repository.TagRepositoryImpl,
	notes *repository.NoteRepositoryImpl,
	wsHandler *live.WebSocketHandler,
) *Handler {
	return &Handler{
		auth:       auth,
		workspaces: workspaces,
		access:     access,
		tags:       tags,
		notes:      notes,
		wsHandler:  wsHandler,
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondRepoError maps repository errors onto HTTP statuses.
func respondRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicateUser):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidCredentials), errors.Is(err, repository.ErrTokenNotFound):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// requireUser pulls the authenticated user out of the request context,
// writing the 401 itself on failure.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
	}
	return userID, ok
}

// pathID parses a uuid path variable, writing the 400 itself on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
