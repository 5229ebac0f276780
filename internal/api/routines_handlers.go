package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/liftlog/internal/types"
	"github.com/hyperengineering/liftlog/internal/validation"
)

const maxNameLength = 120

// validateRoutineRequest checks a create/update routine payload and defaults
// each item's method to NORMAL when absent.
func validateRoutineRequest(req *types.CreateRoutineRequest) []validation.ValidationError {
	var c validation.Collector
	c.Add(validation.ValidateRequired("name", req.Name))
	c.Add(validation.ValidateMaxLength("name", req.Name, maxNameLength))
	if len(req.Items) == 0 {
		c.Add(&validation.ValidationError{Field: "items", Message: "must contain at least one item"})
	}

	for i := range req.Items {
		item := &req.Items[i]
		if item.Method == "" {
			item.Method = types.MethodNormal
		}
		prefix := fmt.Sprintf("items[%d]", i)
		c.Add(validation.ValidateRequired(prefix+".exercise_name", item.ExerciseName))
		c.Add(validation.ValidateNonNegativeInt(prefix+".series", item.Series))
		c.Add(validation.ValidateNonNegativeInt(prefix+".rir", item.RIR))
		c.Add(validation.ValidateEnum(prefix+".method", string(item.Method), types.Methods))
	}

	return c.Errors()
}

// getOwnedRoutine loads the routine in the URL and checks it belongs to the
// authenticated user. A routine owned by someone else reads as not found, so
// ids never leak across accounts. Writes the error response itself and
// returns nil when the caller should stop.
func (h *Handler) getOwnedRoutine(w http.ResponseWriter, r *http.Request) *types.Routine {
	routine, err := h.store.GetRoutine(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return nil
	}
	if routine.UserID != MustUserFromContext(r.Context()).ID {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return nil
	}
	return routine
}

// ListRoutines handles GET /api/v1/routines
func (h *Handler) ListRoutines(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())

	routines, err := h.store.ListRoutines(r.Context(), user.ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if routines == nil {
		routines = []types.Routine{}
	}

	writeJSON(w, http.StatusOK, routines)
}

// CreateRoutine handles POST /api/v1/routines
func (h *Handler) CreateRoutine(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())

	var req types.CreateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if errs := validateRoutineRequest(&req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	routine, err := h.store.CreateRoutine(r.Context(), user.ID, req.Name, req.Items)
	if err != nil {
		slog.Error("create routine failed", "error", err, "user_id", user.ID)
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, routine)
}

// UpdateRoutine handles PUT /api/v1/routines/{id}. The item list is replaced
// wholesale: the request must carry the complete desired set every time.
func (h *Handler) UpdateRoutine(w http.ResponseWriter, r *http.Request) {
	routine := h.getOwnedRoutine(w, r)
	if routine == nil {
		return
	}

	var req types.CreateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if errs := validateRoutineRequest(&req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	if err := h.store.UpdateRoutine(r.Context(), routine.ID, req.Name, req.Items); err != nil {
		slog.Error("update routine failed", "error", err, "routine_id", routine.ID)
		MapStoreError(w, r, err)
		return
	}

	updated, err := h.store.GetRoutine(r.Context(), routine.ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DeleteRoutine handles DELETE /api/v1/routines/{id}
func (h *Handler) DeleteRoutine(w http.ResponseWriter, r *http.Request) {
	routine := h.getOwnedRoutine(w, r)
	if routine == nil {
		return
	}

	if err := h.store.DeleteRoutine(r.Context(), routine.ID); err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DuplicateRoutine handles POST /api/v1/routines/{id}/duplicate
func (h *Handler) DuplicateRoutine(w http.ResponseWriter, r *http.Request) {
	routine := h.getOwnedRoutine(w, r)
	if routine == nil {
		return
	}

	dup, err := h.store.DuplicateRoutine(r.Context(), routine.ID)
	if err != nil {
		slog.Error("duplicate routine failed", "error", err, "routine_id", routine.ID)
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dup)
}

// ApplyRoutine handles POST /api/v1/routines/{id}/apply. Expands the routine
// into a fresh workout task on the target date and returns the refreshed day.
func (h *Handler) ApplyRoutine(w http.ResponseWriter, r *http.Request) {
	routine := h.getOwnedRoutine(w, r)
	if routine == nil {
		return
	}
	user := MustUserFromContext(r.Context())

	var req types.TargetDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if err := validation.ValidateDate("date", req.Date); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}
	day, err := parseDay(req.Date)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid date")
		return
	}

	items := make([]types.NewTaskItem, len(routine.Items))
	for i, src := range routine.Items {
		items[i] = types.NewTaskItem{
			Title:          src.ExerciseName,
			Series:         src.Series,
			RIR:            src.RIR,
			Tempo:          src.Tempo,
			Method:         src.Method,
			PrescribedReps: src.PrescribedReps,
		}
	}

	if _, err := h.store.CreateTask(r.Context(), user.ID, routine.Name, types.TaskTypeWorkout, day, items); err != nil {
		slog.Error("apply routine failed", "error", err, "routine_id", routine.ID)
		MapStoreError(w, r, err)
		return
	}

	h.writeDay(w, r, user.ID, req.Date, day, http.StatusCreated)
}
