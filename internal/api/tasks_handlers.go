package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/liftlog/internal/store"
	"github.com/hyperengineering/liftlog/internal/types"
	"github.com/hyperengineering/liftlog/internal/validation"
)

// copySuffix is appended to duplicated task titles, same as routine copies.
const copySuffix = store.CopySuffix

// validateTaskRequest checks a create task payload and defaults each item's
// method to NORMAL when absent. An empty item list is allowed: ad-hoc meal
// tasks often carry none.
func validateTaskRequest(req *types.CreateTaskRequest) []validation.ValidationError {
	var c validation.Collector
	c.Add(validation.ValidateRequired("title", req.Title))
	c.Add(validation.ValidateMaxLength("title", req.Title, maxNameLength))
	c.Add(validation.ValidateEnum("task_type", string(req.TaskType), types.TaskTypes))
	if req.ScheduledFor.IsZero() {
		c.Add(&validation.ValidationError{Field: "scheduled_for", Message: "is required"})
	}

	for i := range req.Items {
		item := &req.Items[i]
		if item.Method == "" {
			item.Method = types.MethodNormal
		}
		prefix := fmt.Sprintf("items[%d]", i)
		c.Add(validation.ValidateRequired(prefix+".title", item.Title))
		c.Add(validation.ValidateNonNegativeInt(prefix+".series", item.Series))
		c.Add(validation.ValidateNonNegativeInt(prefix+".rir", item.RIR))
		c.Add(validation.ValidateEnum(prefix+".method", string(item.Method), types.Methods))
	}

	return c.Errors()
}

// getOwnedTask loads the task in the URL and checks it belongs to the
// authenticated user. Writes the error response itself and returns nil when
// the caller should stop.
func (h *Handler) getOwnedTask(w http.ResponseWriter, r *http.Request) *types.DailyTask {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapStoreError(w, r, err)
		return nil
	}
	if task.UserID != MustUserFromContext(r.Context()).ID {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return nil
	}
	return task
}

// writeDay fetches the task list for one day and writes it with its
// completion ratio.
func (h *Handler) writeDay(w http.ResponseWriter, r *http.Request, userID, date string, day time.Time, status int) {
	tasks, err := h.store.ListTasksForDate(r.Context(), userID, day)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	completed := 0
	for _, t := range tasks {
		if t.IsCompleted {
			completed++
		}
	}

	writeJSON(w, status, types.DayResponse{
		Date:      date,
		Tasks:     tasks,
		Completed: completed,
		Total:     len(tasks),
	})
}

// Day handles GET /api/v1/tasks?date=YYYY-MM-DD
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())

	date := r.URL.Query().Get("date")
	if err := validation.ValidateDate("date", date); err != nil {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", []validation.ValidationError{*err})
		return
	}
	day, err := parseDay(date)
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, "Invalid date")
		return
	}

	h.writeDay(w, r, user.ID, date, day, http.StatusOK)
}

// CreateTask handles POST /api/v1/tasks. With save_as_routine set the same
// item list is also stored as a reusable routine template; a failure there
// does not undo the task, it only surfaces in the log.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())

	var req types.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}
	if errs := validateTaskRequest(&req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	task, err := h.store.CreateTask(r.Context(), user.ID, req.Title, req.TaskType, req.ScheduledFor, req.Items)
	if err != nil {
		slog.Error("create task failed", "error", err, "user_id", user.ID)
		MapStoreError(w, r, err)
		return
	}

	if req.SaveAsRoutine && len(req.Items) > 0 {
		routineItems := make([]types.NewRoutineItem, len(req.Items))
		for i, src := range req.Items {
			routineItems[i] = types.NewRoutineItem{
				ExerciseName:   src.Title,
				Series:         src.Series,
				RIR:            src.RIR,
				Tempo:          src.Tempo,
				Method:         src.Method,
				PrescribedReps: src.PrescribedReps,
			}
		}
		if _, err := h.store.CreateRoutine(r.Context(), user.ID, req.Title, routineItems); err != nil {
			slog.Warn("save task as routine failed", "error", err, "task_id", task.ID)
		}
	}

	writeJSON(w, http.StatusCreated, task)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := h.getOwnedTask(w, r)
	if task == nil {
		return
	}

	if err := h.store.DeleteTask(r.Context(), task.ID); err != nil {
		MapStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetTaskCompletion handles PUT /api/v1/tasks/{id}/completion
func (h *Handler) SetTaskCompletion(w http.ResponseWriter, r *http.Request) {
	task := h.getOwnedTask(w, r)
	if task == nil {
		return
	}

	var req types.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if err := h.store.SetTaskCompletion(r.Context(), task.ID, req.Completed); err != nil {
		slog.Error("set task completion failed", "error", err, "task_id", task.ID)
		MapStoreError(w, r, err)
		return
	}

	updated, err := h.store.GetTask(r.Context(), task.ID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DuplicateTask handles POST /api/v1/tasks/{id}/duplicate. Copies the task
// onto the target date with every item reset to incomplete, then returns the
// refreshed target day.
func (h *Handler) DuplicateTask(w http.ResponseWriter, r *http.Request) {
	task := h.getOwnedTask(w, r)
	if task == nil {
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

	items := make([]types.NewTaskItem, len(task.Items))
	for i, src := range task.Items {
		// Completion state and actuals never survive a copy.
		items[i] = types.NewTaskItem{
			Title:          src.Title,
			Series:         src.Series,
			RIR:            src.RIR,
			Tempo:          src.Tempo,
			Method:         src.Method,
			PrescribedReps: src.PrescribedReps,
		}
	}

	if _, err := h.store.CreateTask(r.Context(), user.ID, task.Title+copySuffix, task.TaskType, day, items); err != nil {
		slog.Error("duplicate task failed", "error", err, "task_id", task.ID)
		MapStoreError(w, r, err)
		return
	}

	h.writeDay(w, r, user.ID, req.Date, day, http.StatusCreated)
}

// RecordItemProgress handles PUT /api/v1/task-items/{id}/progress
func (h *Handler) RecordItemProgress(w http.ResponseWriter, r *http.Request) {
	user := MustUserFromContext(r.Context())
	itemID := chi.URLParam(r, "id")

	owner, err := h.store.TaskItemOwner(r.Context(), itemID)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}
	if owner != user.ID {
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
		return
	}

	var req types.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	var c validation.Collector
	c.Add(validation.ValidateNonNegativeInt("actual_reps", req.ActualReps))
	c.Add(validation.ValidateFiniteNonNegative("actual_weight", req.ActualWeight))
	if c.HasErrors() {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", c.Errors())
		return
	}

	if err := h.store.RecordItemProgress(r.Context(), itemID, req.ActualReps, req.ActualWeight); err != nil {
		slog.Error("record item progress failed", "error", err, "item_id", itemID)
		MapStoreError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
