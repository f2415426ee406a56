package api

import (
	"net/http"

	"graphlet/internal/models"
)

func (h *Handler) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	workspaces, err := h.workspaces.List(r.Context(), userID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workspaces)
}

func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.WorkspaceCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	workspace, err := h.workspaces.Create(r.Context(), userID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, workspace)
}

func (h *Handler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workspace, err := h.workspaces.Get(r.Context(), userID, workspaceID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workspace)
}

func (h *Handler) UpdateWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.WorkspaceUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	workspace, err := h.workspaces.Update(r.Context(), userID, workspaceID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workspace)
}

func (h *Handler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.workspaces.Delete(r.Context(), userID, workspaceID); err != nil {
		respondRepoError(w, err)
		return
	}

	// Collaborators still connected get cut off with the workspace.
	h.wsHandler.CloseWorkspaceSession(workspaceID)

	respondJSON(w, http.StatusNoContent, nil)
}
