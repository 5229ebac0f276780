package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hyperengineering/liftlog/internal/types"
)

// CopySuffix is appended to the name of a duplicated routine or task.
const CopySuffix = " (Copia)"

// CreateRoutine persists a new routine template. The header row and the item
// batch are written in two steps; a header that went in before a failed item
// batch stays in place (callers re-fetch, see Store).
func (s *SQLiteStore) CreateRoutine(ctx context.Context, userID, name string, items []types.NewRoutineItem) (*types.Routine, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: routine name is required", ErrValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: routine needs at least one item", ErrValidation)
	}

	now := time.Now().UTC()
	routine := &types.Routine{
		ID:        newID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routines (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, routine.ID, routine.UserID, routine.Name, fmtTime(now), fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}

	inserted, err := s.insertRoutineItems(ctx, routine.ID, items)
	if err != nil {
		return nil, fmt.Errorf("insert routine items: %w", err)
	}
	routine.Items = inserted

	return routine, nil
}

// insertRoutineItems batch-inserts items with sort_order equal to the array
// index. The batch itself is atomic.
func (s *SQLiteStore) insertRoutineItems(ctx context.Context, routineID string, items []types.NewRoutineItem) ([]types.RoutineItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routine_items (id, routine_id, exercise_name, series, rir, tempo, method, prescribed_reps, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	out := make([]types.RoutineItem, 0, len(items))
	for idx, it := range items {
		row := types.RoutineItem{
			ID:             newID(),
			RoutineID:      routineID,
			ExerciseName:   it.ExerciseName,
			Series:         it.Series,
			RIR:            it.RIR,
			Tempo:          it.Tempo,
			Method:         it.Method,
			PrescribedReps: it.PrescribedReps,
			SortOrder:      idx,
		}
		if _, err := stmt.ExecContext(ctx, row.ID, row.RoutineID, row.ExerciseName, row.Series, row.RIR, row.Tempo, string(row.Method), row.PrescribedReps, row.SortOrder); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", idx, err)
		}
		out = append(out, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return out, nil
}

// UpdateRoutine replaces the routine's name and performs a full
// delete-then-reinsert of its items. This is a deliberate non-diffing
// contract: any item not resubmitted is lost and every resubmitted item
// receives a new identity.
func (s *SQLiteStore) UpdateRoutine(ctx context.Context, routineID, name string, items []types.NewRoutineItem) error {
	if name == "" {
		return fmt.Errorf("%w: routine name is required", ErrValidation)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: routine needs at least one item", ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE routines SET name = ?, updated_at = ? WHERE id = ?
	`, name, fmtTime(time.Now().UTC()), routineID)
	if err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM routine_items WHERE routine_id = ?`, routineID); err != nil {
		return fmt.Errorf("delete routine items: %w", err)
	}

	if _, err := s.insertRoutineItems(ctx, routineID, items); err != nil {
		return fmt.Errorf("insert routine items: %w", err)
	}

	return nil
}

// DuplicateRoutine creates a copy of the routine for the same user, with the
// name suffixed, fresh item ids and preserved ordering.
func (s *SQLiteStore) DuplicateRoutine(ctx context.Context, routineID string) (*types.Routine, error) {
	source, err := s.GetRoutine(ctx, routineID)
	if err != nil {
		return nil, err
	}

	items := make([]types.NewRoutineItem, len(source.Items))
	for i, it := range source.Items {
		items[i] = types.NewRoutineItem{
			ExerciseName:   it.ExerciseName,
			Series:         it.Series,
			RIR:            it.RIR,
			Tempo:          it.Tempo,
			Method:         it.Method,
			PrescribedReps: it.PrescribedReps,
		}
	}

	return s.CreateRoutine(ctx, source.UserID, source.Name+CopySuffix, items)
}

// DeleteRoutine removes the routine; its items go with it via the foreign
// key cascade.
func (s *SQLiteStore) DeleteRoutine(ctx context.Context, routineID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, routineID)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
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

// GetRoutine retrieves one routine with its items eagerly loaded in
// sort_order. Items is always non-nil after a successful fetch.
func (s *SQLiteStore) GetRoutine(ctx context.Context, routineID string) (*types.Routine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM routines
		WHERE id = ?
	`, routineID)

	routine, err := scanRoutine(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan routine: %w", err)
	}

	items, err := s.routineItems(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	routine.Items = items

	return routine, nil
}

// ListRoutines returns the user's routines ordered by name ascending, each
// with its items eagerly loaded.
func (s *SQLiteStore) ListRoutines(ctx context.Context, userID string) ([]types.Routine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at, updated_at
		FROM routines
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query routines: %w", err)
	}
	defer rows.Close()

	routines := []types.Routine{}
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routines: %w", err)
	}

	for i := range routines {
		items, err := s.routineItems(ctx, routines[i].ID)
		if err != nil {
			return nil, err
		}
		routines[i].Items = items
	}

	return routines, nil
}

func (s *SQLiteStore) routineItems(ctx context.Context, routineID string) ([]types.RoutineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, routine_id, exercise_name, series, rir, tempo, method, prescribed_reps, sort_order
		FROM routine_items
		WHERE routine_id = ?
		ORDER BY sort_order ASC
	`, routineID)
	if err != nil {
		return nil, fmt.Errorf("query routine items: %w", err)
	}
	defer rows.Close()

	items := []types.RoutineItem{}
	for rows.Next() {
		var it types.RoutineItem
		var method string
		if err := rows.Scan(&it.ID, &it.RoutineID, &it.ExerciseName, &it.Series, &it.RIR, &it.Tempo, &method, &it.PrescribedReps, &it.SortOrder); err != nil {
			return nil, fmt.Errorf("scan routine item: %w", err)
		}
		it.Method = types.Method(method)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routine items: %w", err)
	}

	return items, nil
}

func scanRoutine(scanner interface{ Scan(...any) error }) (*types.Routine, error) {
	var r types.Routine
	var createdAt, updatedAt string
	if err := scanner.Scan(&r.ID, &r.UserID, &r.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}
