package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperengineering/liftlog/internal/types"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the SQLite-backed system of record for the workout tracker.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection: SQLite allows one writer, and pragmas plus
	// in-memory databases are per-connection.
	db.SetMaxOpenConns(1)

	// Enable pragmas for performance and safety
	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	// Run goose migrations
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// newID returns a fresh ULID row id.
func newID() string {
	return ulid.Make().String()
}

// Timestamps are stored as UTC RFC 3339 strings so the scheduled_for range
// queries can compare them lexicographically.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ListExercises returns the full exercise catalog ordered by category, name.
func (s *SQLiteStore) ListExercises(ctx context.Context) ([]types.ExerciseLibraryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category
		FROM exercise_library
		ORDER BY category ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query exercise library: %w", err)
	}
	defer rows.Close()

	entries := []types.ExerciseLibraryEntry{}
	for rows.Next() {
		var e types.ExerciseLibraryEntry
		if err := rows.Scan(&e.Name, &e.Category); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate library rows: %w", err)
	}

	return entries, nil
}

// SeedExercises inserts catalog entries, skipping names already present.
// Returns the number of entries inserted.
func (s *SQLiteStore) SeedExercises(ctx context.Context, entries []types.ExerciseLibraryEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO exercise_library (id, name, category)
		SELECT ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM exercise_library WHERE name = ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx, newID(), e.Name, e.Category, e.Name)
		if err != nil {
			return inserted, fmt.Errorf("insert library entry %q: %w", e.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("get rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

// GetStats returns aggregate store statistics.
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	stats := &types.StoreStats{}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.UserCount); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM routines").Scan(&stats.RoutineCount); err != nil {
		return nil, fmt.Errorf("count routines: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_tasks").Scan(&stats.TaskCount); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	return stats, nil
}
