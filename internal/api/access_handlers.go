package api

import (
	"net/http"

	"graphlet/internal/models"
)

func (h *Handler) GetAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}

	access, err := h.access.Get(r.Context(), userID, workspaceID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, access)
}

func (h *Handler) ListAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}

	grants, err := h.access.List(r.Context(), userID, workspaceID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, grants)
}

func (h *Handler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}

	var req models.AccessGrant
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.AccessLevel.Valid() {
		respondError(w, http.StatusBadRequest, "invalid access level")
		return
	}

	grant, err := h.access.Grant(r.Context(), userID, workspaceID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, grant)
}

func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	targetUserID, ok := pathID(w, r, "targetUserId")
	if !ok {
		return
	}

	if err := h.access.Revoke(r.Context(), userID, workspaceID, targetUserID); err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
