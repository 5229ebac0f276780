package store

import (
	"context"
	"time"

	"github.com/hyperengineering/liftlog/internal/types"
)

// Store defines the interface contract for all persistence operations.
//
// Write operations that span a header row and a child-item batch are not
// transactional across the two steps: the header write is never rolled back
// when the item batch fails. Callers must treat a reported failure as "state
// may be partially applied" and re-fetch before retrying.
type Store interface {
	// Exercise library (read-only except for seeding).
	ListExercises(ctx context.Context) ([]types.ExerciseLibraryEntry, error)
	SeedExercises(ctx context.Context, entries []types.ExerciseLibraryEntry) (int, error)

	// Routine store.
	CreateRoutine(ctx context.Context, userID, name string, items []types.NewRoutineItem) (*types.Routine, error)
	UpdateRoutine(ctx context.Context, routineID, name string, items []types.NewRoutineItem) error
	DuplicateRoutine(ctx context.Context, routineID string) (*types.Routine, error)
	DeleteRoutine(ctx context.Context, routineID string) error
	GetRoutine(ctx context.Context, routineID string) (*types.Routine, error)
	ListRoutines(ctx context.Context, userID string) ([]types.Routine, error)

	// Daily task store.
	ListTasksForDate(ctx context.Context, userID string, date time.Time) ([]types.DailyTask, error)
	CreateTask(ctx context.Context, userID, title string, taskType types.TaskType, scheduledFor time.Time, items []types.NewTaskItem) (*types.DailyTask, error)
	GetTask(ctx context.Context, taskID string) (*types.DailyTask, error)
	DeleteTask(ctx context.Context, taskID string) error
	SetTaskCompletion(ctx context.Context, taskID string, completed bool) error
	RecordItemProgress(ctx context.Context, itemID string, actualReps int, actualWeight float64) error
	TaskItemOwner(ctx context.Context, itemID string) (string, error)

	// Authentication persistence.
	UpsertUser(ctx context.Context, email string) (*types.User, error)
	CreateLoginToken(ctx context.Context, token, email, redirectTo string, expiresAt time.Time) error
	ConsumeLoginToken(ctx context.Context, token string, now time.Time) (string, error)
	CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error
	GetSessionUser(ctx context.Context, token string, now time.Time) (*types.User, error)
	DeleteSession(ctx context.Context, token string) error
	PurgeExpiredAuth(ctx context.Context, now time.Time) (int64, error)

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
