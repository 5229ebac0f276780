package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/liftlog/internal/auth"
	"github.com/hyperengineering/liftlog/internal/store"
	"github.com/hyperengineering/liftlog/internal/types"
	"github.com/hyperengineering/liftlog/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	store   store.Store
	auth    *auth.Service
	version string
}

// NewHandler creates a new Handler with store.Store interface
func NewHandler(s store.Store, a *auth.Service, version string) *Handler {
	return &Handler{
		store:   s,
		auth:    a,
		version: version,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// parseDay parses a YYYY-MM-DD value as local midnight. The task list is
// bucketed by the server's local day, matching how users think about "today".
func parseDay(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		UserCount:    stats.UserCount,
		RoutineCount: stats.RoutineCount,
		TaskCount:    stats.TaskCount,
	})
}

// RequestLink handles POST /api/v1/auth/link
func (h *Handler) RequestLink(w http.ResponseWriter, r *http.Request) {
	var req types.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateRequired("email", req.Email))
	c.Add(validation.ValidateEmail("email", req.Email))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	if err := h.auth.RequestLink(r.Context(), req.Email, req.RedirectTo); err != nil {
		slog.Error("login link request failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Could not send sign-in link")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

// Verify handles POST /api/v1/auth/verify
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if err := validation.ValidateRequired("token", req.Token); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}

	user, session, err := h.auth.Verify(r.Context(), req.Token)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.SessionResponse{Token: session, User: *user})
}

// Session handles GET /api/v1/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, types.SessionResponse{User: *user})
}

// SignOut handles POST /api/v1/auth/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), extractBearerToken(r)); err != nil {
		slog.Error("sign-out failed", "error", err)
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Library handles GET /api/v1/library
func (h *Handler) Library(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListExercises(r.Context())
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.LibraryResponse{Exercises: types.GroupLibrary(entries)})
}
