package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/liftlog/internal/types"
)

// ListTasksForDate returns tasks scheduled within [local midnight of date,
// next local midnight), ordered by scheduled_for ascending, each with its
// items in sort_order. Calling it twice with no intervening writes returns
// the same set.
func (s *SQLiteStore) ListTasksForDate(ctx context.Context, userID string, date time.Time) ([]types.DailyTask, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, task_type, is_completed, completed_at, scheduled_for, created_at
		FROM daily_tasks
		WHERE user_id = ? AND scheduled_for >= ? AND scheduled_for < ?
		ORDER BY scheduled_for ASC
	`, userID, fmtTime(start), fmtTime(end))
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.DailyTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	for i := range tasks {
		items, err := s.taskItems(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Items = items
	}

	return tasks, nil
}

// CreateTask schedules a new daily task. The task and every item start
// incomplete regardless of the input's origin. Header and item batch are two
// steps; a failed batch leaves the header in place (callers re-fetch).
func (s *SQLiteStore) CreateTask(ctx context.Context, userID, title string, taskType types.TaskType, scheduledFor time.Time, items []types.NewTaskItem) (*types.DailyTask, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrValidation)
	}

	now := time.Now().UTC()
	task := &types.DailyTask{
		ID:           newID(),
		UserID:       userID,
		Title:        title,
		TaskType:     taskType,
		ScheduledFor: scheduledFor.UTC(),
		Items:        []types.TaskItem{},
		CreatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_tasks (id, user_id, title, task_type, is_completed, completed_at, scheduled_for, created_at)
		VALUES (?, ?, ?, ?, 0, NULL, ?, ?)
	`, task.ID, task.UserID, task.Title, string(task.TaskType), fmtTime(scheduledFor), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	if len(items) > 0 {
		inserted, err := s.insertTaskItems(ctx, task.ID, items)
		if err != nil {
			return nil, fmt.Errorf("insert task items: %w", err)
		}
		task.Items = inserted
	}

	return task, nil
}

// insertTaskItems batch-inserts items with sort_order equal to the array
// index and completion state forced fresh. The batch itself is atomic.
func (s *SQLiteStore) insertTaskItems(ctx context.Context, taskID string, items []types.NewTaskItem) ([]types.TaskItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO task_items (id, task_id, title, series, rir, tempo, method, prescribed_reps, sort_order, is_completed, actual_reps, actual_weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL, NULL)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	out := make([]types.TaskItem, 0, len(items))
	for idx, it := range items {
		row := types.TaskItem{
			ID:             newID(),
			TaskID:         taskID,
			Title:          it.Title,
			Series:         it.Series,
			RIR:            it.RIR,
			Tempo:          it.Tempo,
			Method:         it.Method,
			PrescribedReps: it.PrescribedReps,
			SortOrder:      idx,
		}
		if _, err := stmt.ExecContext(ctx, row.ID, row.TaskID, row.Title, row.Series, row.RIR, row.Tempo, string(row.Method), row.PrescribedReps, row.SortOrder); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", idx, err)
		}
		out = append(out, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return out, nil
}

// GetTask retrieves one task with its items eagerly loaded in sort_order.
func (s *SQLiteStore) GetTask(ctx context.Context, taskID string) (*types.DailyTask, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, task_type, is_completed, completed_at, scheduled_for, created_at
		FROM daily_tasks
		WHERE id = ?
	`, taskID)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	items, err := s.taskItems(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.Items = items

	return task, nil
}

// DeleteTask removes the task; its items go with it via the foreign key
// cascade.
func (s *SQLiteStore) DeleteTask(ctx context.Context, taskID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTaskCompletion sets is_completed and completed_at together in one
// statement: completing stamps the time, un-completing clears it.
func (s *SQLiteStore) SetTaskCompletion(ctx context.Context, taskID string, completed bool) error {
	var completedAt any
	flag := 0
	if completed {
		flag = 1
		completedAt = fmtTime(time.Now().UTC())
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_tasks SET is_completed = ?, completed_at = ? WHERE id = ?
	`, flag, completedAt, taskID)
	if err != nil {
		return fmt.Errorf("update task completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordItemProgress marks the item complete with the performed values.
// Both values are written in the same statement so a completed item always
// carries both actuals.
func (s *SQLiteStore) RecordItemProgress(ctx context.Context, itemID string, actualReps int, actualWeight float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE task_items SET is_completed = 1, actual_reps = ?, actual_weight = ? WHERE id = ?
	`, actualReps, actualWeight, itemID)
	if err != nil {
		return fmt.Errorf("update item progress: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// TaskItemOwner resolves the user id owning the task the item belongs to.
func (s *SQLiteStore) TaskItemOwner(ctx context.Context, itemID string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT t.user_id
		FROM task_items i
		JOIN daily_tasks t ON t.id = i.task_id
		WHERE i.id = ?
	`, itemID).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query item owner: %w", err)
	}
	return userID, nil
}

func (s *SQLiteStore) taskItems(ctx context.Context, taskID string) ([]types.TaskItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, title, series, rir, tempo, method, prescribed_reps, sort_order, is_completed, actual_reps, actual_weight
		FROM task_items
		WHERE task_id = ?
		ORDER BY sort_order ASC
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query task items: %w", err)
	}
	defer rows.Close()

	items := []types.TaskItem{}
	for rows.Next() {
		var it types.TaskItem
		var method string
		var completed int
		var actualReps sql.NullInt64
		var actualWeight sql.NullFloat64
		if err := rows.Scan(&it.ID, &it.TaskID, &it.Title, &it.Series, &it.RIR, &it.Tempo, &method, &it.PrescribedReps, &it.SortOrder, &completed, &actualReps, &actualWeight); err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}
		it.Method = types.Method(method)
		it.IsCompleted = completed != 0
		if actualReps.Valid {
			reps := int(actualReps.Int64)
			it.ActualReps = &reps
		}
		if actualWeight.Valid {
			weight := actualWeight.Float64
			it.ActualWeight = &weight
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task items: %w", err)
	}

	return items, nil
}

func scanTask(scanner interface{ Scan(...any) error }) (*types.DailyTask, error) {
	var t types.DailyTask
	var taskType string
	var completed int
	var completedAt sql.NullString
	var scheduledFor, createdAt string

	if err := scanner.Scan(&t.ID, &t.UserID, &t.Title, &taskType, &completed, &completedAt, &scheduledFor, &createdAt); err != nil {
		return nil, err
	}

	t.TaskType = types.TaskType(taskType)
	t.IsCompleted = completed != 0
	if completedAt.Valid {
		at := parseTime(completedAt.String)
		t.CompletedAt = &at
	}
	t.ScheduledFor = parseTime(scheduledFor)
	t.CreatedAt = parseTime(createdAt)

	return &t, nil
}
