package api

import (
	"net/http"

	"graphlet/internal/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(h *Handler, tokens middleware.TokenResolver) *mux.Router {
	r := mux.NewRouter()

	// Middleware runs in order: tracing first, then recovery, then CORS,
	// then token resolution.
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.AuthMiddleware(tokens))

	api := r.PathPrefix("/api").Subrouter()

	// Auth endpoints
	api.HandleFunc("/login", h.Login).Methods("POST")
	api.HandleFunc("/logout", h.Logout).Methods("POST")

	// User endpoints
	api.HandleFunc("/user/register", h.RegisterUser).Methods("POST")
	api.HandleFunc("/user/me", h.GetCurrentUser).Methods("GET")
	api.HandleFunc("/user/me", h.UpdateCurrentUser).Methods("PUT")
	api.HandleFunc("/user/{id}", h.GetUser).Methods("GET")

	// Workspace endpoints
	api.HandleFunc("/workspace", h.ListWorkspaces).Methods("GET")
	api.HandleFunc("/workspace", h.CreateWorkspace).Methods("POST")
	api.HandleFunc("/workspace/{id}", h.GetWorkspace).Methods("GET")
	api.HandleFunc("/workspace/{id}", h.UpdateWorkspace).Methods("PUT")
	api.HandleFunc("/workspace/{id}", h.DeleteWorkspace).Methods("DELETE")

	// Access endpoints
	api.HandleFunc("/access/workspace/{workspaceId}", h.GetAccess).Methods("GET")
	api.HandleFunc("/access/workspace/{workspaceId}/list", h.ListAccess).Methods("GET")
	api.HandleFunc("/access/workspace/{workspaceId}/grant", h.GrantAccess).Methods("POST")
	api.HandleFunc("/access/workspace/{workspaceId}/update", h.GrantAccess).Methods("PUT")
	api.HandleFunc("/access/workspace/{workspaceId}/revoke/{targetUserId}", h.RevokeAccess).Methods("DELETE")

	// Tag endpoints
	api.HandleFunc("/workspace/{workspaceId}/tags", h.ListTags).Methods("GET")
	api.HandleFunc("/workspace/{workspaceId}/tags", h.CreateTag).Methods("POST")
	api.HandleFunc("/workspace/{workspaceId}/tags/{tagId}", h.GetTag).Methods("GET")
	api.HandleFunc("/workspace/{workspaceId}/tags/{tagId}", h.UpdateTag).Methods("PUT")
	api.HandleFunc("/workspace/{workspaceId}/tags/{tagId}", h.DeleteTag).Methods("DELETE")

	// Note endpoints
	api.HandleFunc("/workspace/{workspaceId}/note", h.ListNotes).Methods("GET")
	api.HandleFunc("/workspace/{workspaceId}/note", h.CreateNote).Methods("POST")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}", h.GetNote).Methods("GET")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}", h.UpdateNote).Methods("PUT")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}", h.DeleteNote).Methods("DELETE")

	// Note tag endpoints
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/tags/{tagId}", h.AttachNoteTag).Methods("PUT")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/tags/{tagId}", h.DetachNoteTag).Methods("DELETE")

	// Note relation endpoints
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/relation", h.CreateNoteRelation).Methods("POST")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/relation/{relationId}", h.GetNoteRelation).Methods("GET")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/relation/{relationId}", h.UpdateNoteRelation).Methods("PUT")
	api.HandleFunc("/workspace/{workspaceId}/note/{noteId}/relation/{relationId}", h.DeleteNoteRelation).Methods("DELETE")

	// Health check endpoint
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// WebSocket route
	r.HandleFunc("/ws", h.HandleLiveConnection)

	return r
}
