package liftlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeServer is a minimal scriptable LiftLog backend.
type fakeServer struct {
	mu       sync.Mutex
	day      Day
	failNext bool
	applies  int
	dayGets  int
}

func (f *fakeServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.dayGets++
		json.NewEncoder(w).Encode(f.day)
	})

	mux.HandleFunc("PUT /api/v1/tasks/{id}/completion", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNext {
			f.failNext = false
			http.Error(w, `{"detail":"store unavailable"}`, http.StatusInternalServerError)
			return
		}
		var req struct {
			Completed bool `json:"completed"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for i := range f.day.Tasks {
			if f.day.Tasks[i].ID == r.PathValue("id") {
				f.day.Tasks[i].IsCompleted = req.Completed
				if req.Completed {
					now := time.Now().UTC()
					f.day.Tasks[i].CompletedAt = &now
				} else {
					f.day.Tasks[i].CompletedAt = nil
				}
				json.NewEncoder(w).Encode(f.day.Tasks[i])
				return
			}
		}
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	mux.HandleFunc("PUT /api/v1/task-items/{id}/progress", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failNext {
			f.failNext = false
			http.Error(w, `{"detail":"store unavailable"}`, http.StatusInternalServerError)
			return
		}
		var req struct {
			Reps   int     `json:"actual_reps"`
			Weight float64 `json:"actual_weight"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		for ti := range f.day.Tasks {
			for ii := range f.day.Tasks[ti].Items {
				item := &f.day.Tasks[ti].Items[ii]
				if item.ID == r.PathValue("id") {
					item.IsCompleted = true
					item.ActualReps = &req.Reps
					item.ActualWeight = &req.Weight
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
		}
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
	})

	mux.HandleFunc("POST /api/v1/routines/{id}/apply", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.applies++
		if f.failNext {
			f.failNext = false
			http.Error(w, `{"detail":"store unavailable"}`, http.StatusInternalServerError)
			return
		}
		f.day.Tasks = append(f.day.Tasks, Task{ID: "applied", Title: "Push A", TaskType: TaskTypeWorkout})
		f.day.Total = len(f.day.Tasks)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(f.day)
	})

	return mux
}

func newTestView(t *testing.T) (*DayView, *fakeServer) {
	t.Helper()

	srv := &fakeServer{
		day: Day{
			Date: "2024-06-01",
			Tasks: []Task{
				{
					ID:       "t1",
					Title:    "Leg Day",
					TaskType: TaskTypeWorkout,
					Items: []TaskItem{
						{ID: "i1", Title: "Squat", Series: 3, PrescribedReps: "10-12"},
						{ID: "i2", Title: "Lunge", Series: 3, PrescribedReps: "12-15"},
					},
				},
			},
			Total: 1,
		},
	}
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)

	client := New(ts.URL)
	client.SetToken("session-token")
	view := NewDayView(client, "2024-06-01")
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return view, srv
}

func TestToggleTaskConfirmed(t *testing.T) {
	view, _ := newTestView(t)

	if err := view.ToggleTask(context.Background(), "t1", true); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}

	task := view.Tasks()[0]
	if !task.IsCompleted || task.CompletedAt == nil {
		t.Errorf("task not completed locally: %+v", task)
	}
	if completed, total := view.Completion(); completed != 1 || total != 1 {
		t.Errorf("completion = %d/%d, want 1/1", completed, total)
	}
}

func TestToggleTaskRevertsOnFailure(t *testing.T) {
	view, srv := newTestView(t)
	srv.failNext = true

	err := view.ToggleTask(context.Background(), "t1", true)
	if err == nil {
		t.Fatal("expected error from failed confirmation")
	}

	task := view.Tasks()[0]
	if task.IsCompleted || task.CompletedAt != nil {
		t.Errorf("failed toggle was not reverted: %+v", task)
	}
}

func TestToggleTaskRevertKeepsPriorTimestamp(t *testing.T) {
	view, srv := newTestView(t)

	if err := view.ToggleTask(context.Background(), "t1", true); err != nil {
		t.Fatalf("ToggleTask() error = %v", err)
	}
	completedAt := view.Tasks()[0].CompletedAt

	// Un-completing fails: the prior completed state must survive.
	srv.failNext = true
	if err := view.ToggleTask(context.Background(), "t1", false); err == nil {
		t.Fatal("expected error from failed confirmation")
	}

	task := view.Tasks()[0]
	if !task.IsCompleted || task.CompletedAt == nil {
		t.Fatalf("revert lost the completed state: %+v", task)
	}
	if !task.CompletedAt.Equal(*completedAt) {
		t.Errorf("revert changed completed_at: %v vs %v", task.CompletedAt, completedAt)
	}
}

func TestToggleUnknownTask(t *testing.T) {
	view, _ := newTestView(t)

	if err := view.ToggleTask(context.Background(), "nope", true); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestCompleteItemConfirmed(t *testing.T) {
	view, _ := newTestView(t)

	if err := view.CompleteItem(context.Background(), "i1", 12, 80.5); err != nil {
		t.Fatalf("CompleteItem() error = %v", err)
	}

	item := view.Tasks()[0].Items[0]
	if !item.IsCompleted || item.ActualReps == nil || item.ActualWeight == nil {
		t.Fatalf("item not completed: %+v", item)
	}
	if *item.ActualReps != 12 || *item.ActualWeight != 80.5 {
		t.Errorf("actuals = %d/%v", *item.ActualReps, *item.ActualWeight)
	}
}

func TestCompleteItemRevertKeepsEnteredValues(t *testing.T) {
	view, srv := newTestView(t)
	srv.failNext = true

	if err := view.CompleteItem(context.Background(), "i1", 12, 80.5); err == nil {
		t.Fatal("expected error from failed confirmation")
	}

	item := view.Tasks()[0].Items[0]
	if item.IsCompleted {
		t.Error("failed completion flag was not reverted")
	}
	// Entered values stay so the user can retry without re-typing.
	if item.ActualReps == nil || *item.ActualReps != 12 {
		t.Errorf("entered reps lost: %v", item.ActualReps)
	}
	if item.ActualWeight == nil || *item.ActualWeight != 80.5 {
		t.Errorf("entered weight lost: %v", item.ActualWeight)
	}
}

func TestApplyRoutineRefreshesView(t *testing.T) {
	view, srv := newTestView(t)

	if err := view.ApplyRoutine(context.Background(), "r1"); err != nil {
		t.Fatalf("ApplyRoutine() error = %v", err)
	}

	tasks := view.Tasks()
	if len(tasks) != 2 || tasks[1].ID != "applied" {
		t.Errorf("view not refreshed after apply: %+v", tasks)
	}
	if srv.applies != 1 {
		t.Errorf("applies = %d, want 1", srv.applies)
	}
}

func TestApplyRoutineRefreshesEvenOnFailure(t *testing.T) {
	view, srv := newTestView(t)
	srv.failNext = true

	before := srv.dayGets
	if err := view.ApplyRoutine(context.Background(), "r1"); err == nil {
		t.Fatal("expected error from failed apply")
	}
	if srv.dayGets != before+1 {
		t.Errorf("view was not re-fetched after failed apply: gets %d -> %d", before, srv.dayGets)
	}
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	view, srv := newTestView(t)
	srv.failNext = true

	err := view.ToggleTask(context.Background(), "t1", true)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", apiErr.Status)
	}
	if !strings.Contains(apiErr.Error(), "500") {
		t.Errorf("error string = %q", apiErr.Error())
	}
}
