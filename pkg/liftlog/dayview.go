package liftlog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DayView holds the locally rendered task list for one calendar day.
// Completion toggles are applied to the local state before the server
// confirms them and reverted when confirmation fails, so the view never
// blocks on the network.
type DayView struct {
	client *Client
	date   string

	mu    sync.RWMutex
	tasks []Task
}

// NewDayView creates a view over the given YYYY-MM-DD date.
func NewDayView(client *Client, date string) *DayView {
	return &DayView{client: client, date: date}
}

// Date returns the date this view renders.
func (v *DayView) Date() string {
	return v.date
}

// Load fetches the day from the server, replacing any local state.
func (v *DayView) Load(ctx context.Context) error {
	day, err := v.client.Day(ctx, v.date)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.tasks = day.Tasks
	v.mu.Unlock()
	return nil
}

// Tasks returns a snapshot of the local task list.
func (v *DayView) Tasks() []Task {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make([]Task, len(v.tasks))
	copy(out, v.tasks)
	for i := range out {
		items := make([]TaskItem, len(v.tasks[i].Items))
		copy(items, v.tasks[i].Items)
		out[i].Items = items
	}
	return out
}

// Completion returns the completed and total task counts of the local state.
func (v *DayView) Completion() (completed, total int) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, t := range v.tasks {
		if t.IsCompleted {
			completed++
		}
	}
	return completed, len(v.tasks)
}

// ToggleTask flips a task's completion optimistically and confirms it with
// the server. On failure the local flag and timestamp revert to their prior
// values.
func (v *DayView) ToggleTask(ctx context.Context, taskID string, completed bool) error {
	v.mu.Lock()
	idx := v.taskIndex(taskID)
	if idx < 0 {
		v.mu.Unlock()
		return fmt.Errorf("task %s not in view", taskID)
	}
	priorFlag := v.tasks[idx].IsCompleted
	priorAt := v.tasks[idx].CompletedAt
	v.mu.Unlock()

	apply := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tasks[idx].IsCompleted = completed
		if completed {
			now := time.Now().UTC()
			v.tasks[idx].CompletedAt = &now
		} else {
			v.tasks[idx].CompletedAt = nil
		}
	}
	revert := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tasks[idx].IsCompleted = priorFlag
		v.tasks[idx].CompletedAt = priorAt
	}
	confirm := func() error {
		task, err := v.client.SetTaskCompletion(ctx, taskID, completed)
		if err != nil {
			return err
		}
		// Adopt the server's timestamp once confirmed.
		v.mu.Lock()
		v.tasks[idx].CompletedAt = task.CompletedAt
		v.mu.Unlock()
		return nil
	}

	return optimistic(apply, revert, confirm)
}

// CompleteItem marks a task item done with the entered values, optimistically
// first. On failure the completed flag reverts but the entered reps and
// weight stay in place, so a retry does not require re-typing them.
func (v *DayView) CompleteItem(ctx context.Context, itemID string, reps int, weight float64) error {
	v.mu.Lock()
	ti, ii := v.itemIndex(itemID)
	if ti < 0 {
		v.mu.Unlock()
		return fmt.Errorf("item %s not in view", itemID)
	}
	v.mu.Unlock()

	apply := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		item := &v.tasks[ti].Items[ii]
		item.IsCompleted = true
		item.ActualReps = &reps
		item.ActualWeight = &weight
	}
	revert := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.tasks[ti].Items[ii].IsCompleted = false
	}
	confirm := func() error {
		return v.client.RecordItemProgress(ctx, itemID, reps, weight)
	}

	return optimistic(apply, revert, confirm)
}

// ApplyRoutine expands a routine onto this view's date. The view is
// re-fetched regardless of the outcome so it reflects whatever partial
// state the server now holds.
func (v *DayView) ApplyRoutine(ctx context.Context, routineID string) error {
	_, err := v.client.ApplyRoutine(ctx, routineID, v.date)
	if refreshErr := v.Load(ctx); err == nil {
		err = refreshErr
	}
	return err
}

// DuplicateTask copies a task onto the target date, then re-fetches this
// view regardless of the outcome.
func (v *DayView) DuplicateTask(ctx context.Context, taskID, targetDate string) error {
	_, err := v.client.DuplicateTask(ctx, taskID, targetDate)
	if refreshErr := v.Load(ctx); err == nil {
		err = refreshErr
	}
	return err
}

// taskIndex returns the position of a task in the local list, -1 if absent.
// Caller must hold the lock.
func (v *DayView) taskIndex(taskID string) int {
	for i := range v.tasks {
		if v.tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// itemIndex returns the task and item positions of an item, (-1, -1) if
// absent. Caller must hold the lock.
func (v *DayView) itemIndex(itemID string) (int, int) {
	for ti := range v.tasks {
		for ii := range v.tasks[ti].Items {
			if v.tasks[ti].Items[ii].ID == itemID {
				return ti, ii
			}
		}
	}
	return -1, -1
}
