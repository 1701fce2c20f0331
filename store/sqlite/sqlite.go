/*
Package sqlite provides a SQLite-backed implementation of sla.Store.

PURPOSE:
  Persists developer calendars and leave requests. The SLA service reads
  through it as its calendar and leave lookup; the API writes through it
  for dev/demo data.

INTERFACES IMPLEMENTED:
  sla.CalendarSource: developer -> calendar configuration
  sla.LeaveSource:    approved leaves overlapping a window
  sla.Store:          Both, plus calendar/leave writes and Reset

KEY TABLES:
  calendars: One row per developer; the calendar is stored as JSON in the
             same shape the API accepts (working_days, start_time, ...)
  leaves:    Leave requests with status (pending, approved, rejected)

TIME STORAGE:
  Instants are stored as RFC3339 text in UTC. All rows share the same
  format, so the overlap query compares them as strings.

INDEXES:
  - idx_leaves_developer_start: Approved-leave window lookup (hot path)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block
  each other while a write is in flight.

USAGE:
  store, err := sqlite.New("./data/sla.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := sla.NewService(store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - sla/store.go:        Interface definitions
  - sla/store/memory.go: In-memory implementation for testing
  - factory/calendar.go: Calendar JSON shape
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/sla"
	"github.com/warp/sla-engine/workcal"
)

// Store implements sla.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each :memory: connection is its own database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Working calendar per developer
	CREATE TABLE IF NOT EXISTS calendars (
		developer_id TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Leave requests; only approved rows reach the engine
	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		developer_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected')),
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_developer_start
		ON leaves(developer_id, start_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// =============================================================================
// CALENDARS
// =============================================================================

// SaveCalendar assigns or replaces a developer's calendar.
func (s *Store) SaveCalendar(ctx context.Context, developerID string, cfg workcal.CalendarConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configJSON, err := json.Marshal(factory.ToJSON(cfg))
	if err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	now := formatTime(time.Now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calendars (developer_id, config_json, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(developer_id) DO UPDATE SET
			config_json = excluded.config_json,
			updated_at = excluded.updated_at
	`, developerID, string(configJSON), now, now)
	return err
}

// GetCalendar returns nil when the developer has no calendar.
func (s *Store) GetCalendar(ctx context.Context, developerID string) (*workcal.CalendarConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT config_json FROM calendars WHERE developer_id = ?",
		developerID,
	).Scan(&configJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cj, err := factory.DecodeCalendar(configJSON)
	if err != nil {
		return nil, fmt.Errorf("calendar of %q: %w", developerID, err)
	}
	cfg := cj.Config()
	return &cfg, nil
}

// =============================================================================
// LEAVES
// =============================================================================

// SaveLeave inserts a leave, or replaces the developer's leave with the
// same ID. Missing IDs, statuses and timestamps are filled in.
func (s *Store) SaveLeave(ctx context.Context, leave sla.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.Status == "" {
		leave.Status = sla.LeavePending
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = time.Now()
	}

	var reason sql.NullString
	if leave.Reason != "" {
		reason = sql.NullString{String: leave.Reason, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT developer_id FROM leaves WHERE id = ?`, leave.ID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("lookup leave %s: %w", leave.ID, err)
	case owner != leave.DeveloperID:
		return fmt.Errorf("save leave %s for %s: %w", leave.ID, leave.DeveloperID, sla.ErrLeaveConflict)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO leaves (id, developer_id, start_at, end_at, status, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		leave.ID,
		leave.DeveloperID,
		formatTime(leave.Start),
		formatTime(leave.End),
		string(leave.Status),
		reason,
		formatTime(leave.CreatedAt),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ListLeaves returns every leave of the developer ordered by start.
func (s *Store) ListLeaves(ctx context.Context, developerID string) ([]sla.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, developer_id, start_at, end_at, status, reason, created_at
		FROM leaves
		WHERE developer_id = ?
		ORDER BY start_at, id
	`, developerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []sla.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

// ApprovedLeaves returns approved leaves overlapping [from, to).
func (s *Store) ApprovedLeaves(ctx context.Context, developerID string, from, to time.Time) ([]workcal.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT start_at, end_at
		FROM leaves
		WHERE developer_id = ?
		  AND status = 'approved'
		  AND start_at < ?
		  AND end_at > ?
		ORDER BY start_at
	`, developerID, formatTime(to), formatTime(from))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []workcal.LeaveRecord
	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		var rec workcal.LeaveRecord
		if rec.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("leave start %q: %w", start, err)
		}
		if rec.End, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("leave end %q: %w", end, err)
		}
		leaves = append(leaves, rec)
	}
	return leaves, rows.Err()
}

func scanLeave(rows *sql.Rows) (sla.Leave, error) {
	var l sla.Leave
	var start, end, status, createdAt string
	var reason sql.NullString

	if err := rows.Scan(&l.ID, &l.DeveloperID, &start, &end, &status, &reason, &createdAt); err != nil {
		return sla.Leave{}, err
	}

	l.Start, _ = time.Parse(time.RFC3339, start)
	l.End, _ = time.Parse(time.RFC3339, end)
	l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	l.Status = sla.LeaveStatus(status)
	l.Reason = reason.String
	return l, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset removes all calendars and leaves.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"leaves", "calendars"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}

var _ sla.Store = (*Store)(nil)
