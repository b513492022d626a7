// Package web hosts the HTTP/JSON surface for a task store.
//
// The API is a thin translation layer: handlers decode the request,
// call the storage interface, and map its sentinel errors to status
// codes. No task semantics live here.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tacksdev/tacks/internal/storage"
)

// Server wraps a storage backend with HTTP handlers.
type Server struct {
	store storage.Storage
}

// NewHandler builds the HTTP handler serving the JSON API and the
// HTML index page.
func NewHandler(store storage.Storage) http.Handler {
	s := &Server{store: store}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("POST /api/tasks/{id}/close", s.handleCloseTask)
	mux.HandleFunc("POST /api/tasks/{id}/claim", s.handleClaimTask)
	mux.HandleFunc("GET /api/tasks/{id}/children", s.handleChildren)
	mux.HandleFunc("GET /api/tasks/{id}/comments", s.handleListComments)
	mux.HandleFunc("POST /api/tasks/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /api/tasks/{id}/deps", s.handleListDeps)
	mux.HandleFunc("POST /api/tasks/{id}/deps", s.handleAddDep)
	mux.HandleFunc("DELETE /api/tasks/{id}/deps/{parent}", s.handleRemoveDep)

	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.HandleFunc("GET /api/blocked", s.handleBlocked)
	mux.HandleFunc("GET /api/epics", s.handleEpics)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps storage sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidValue),
		errors.Is(err, storage.ErrSelfDependency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrCycle),
		errors.Is(err, storage.ErrDuplicateEdge),
		errors.Is(err, storage.ErrOpenChildren),
		errors.Is(err, storage.ErrAlreadyDone):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
