package api

import (
	"net/http"

	"graphlet/internal/models"
)

func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}

	notes, err := h.notes.List(r.Context(), userID, workspaceID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}

	var req models.NoteCreate
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Kind.Valid() {
		respondError(w, http.StatusBadRequest, "invalid note kind")
		return
	}

	note, err := h.notes.Create(r.Context(), userID, workspaceID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}

	note, err := h.notes.Get(r.Context(), userID, workspaceID, noteID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}

	var req models.NoteUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.notes.Update(r.Context(), userID, workspaceID, noteID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), userID, workspaceID, noteID); err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Note tag handlers

func (h *Handler) AttachNoteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagId")
	if !ok {
		return
	}

	note, err := h.notes.AttachTag(r.Context(), userID, workspaceID, noteID, tagID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (h *Handler) DetachNoteTag(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	tagID, ok := pathID(w, r, "tagId")
	if !ok {
		return
	}

	if err := h.notes.DetachTag(r.Context(), userID, workspaceID, noteID, tagID); err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Note relation handlers

func (h *Handler) CreateNoteRelation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}

	var req models.NoteRelationCreate
	if !decodeBody(w, r, &req) {
		return
	}

	relation, err := h.notes.CreateRelation(r.Context(), userID, workspaceID, noteID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, relation)
}

func (h *Handler) GetNoteRelation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	relationID, ok := pathID(w, r, "relationId")
	if !ok {
		return
	}

	relation, err := h.notes.GetRelation(r.Context(), userID, workspaceID, noteID, relationID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, relation)
}

func (h *Handler) UpdateNoteRelation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	relationID, ok := pathID(w, r, "relationId")
	if !ok {
		return
	}

	var req models.NoteRelationUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	relation, err := h.notes.UpdateRelation(r.Context(), userID, workspaceID, noteID, relationID, &req)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, relation)
}

func (h *Handler) DeleteNoteRelation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workspaceID, ok := pathID(w, r, "workspaceId")
	if !ok {
		return
	}
	noteID, ok := pathID(w, r, "noteId")
	if !ok {
		return
	}
	relationID, ok := pathID(w, r, "relationId")
	if !ok {
		return
	}

	if err := h.notes.DeleteRelation(r.Context(), userID, workspaceID, noteID, relationID); err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
