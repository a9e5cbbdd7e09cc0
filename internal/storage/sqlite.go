// Package storage provides SQLite-based persistence for the run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/redengine/internal/engine"
)

const timeLayout = time.RFC3339Nano

// Store manages the SQLite database connection for run history.
type Store struct {
	db *sql.DB
}

// SessionRecord is one finished execution session.
type SessionRecord struct {
	ID        string
	Script    string
	StartedAt time.Time
	EndedAt   time.Time
	Frames    int
	Width     int
	Height    int
	Reason    string
	Error     string // empty when the session ended cleanly
}

// Duration returns how long the session ran.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RecordFromOutcome converts an engine outcome into a history record.
func RecordFromOutcome(o engine.Outcome) SessionRecord {
	rec := SessionRecord{
		ID:        o.SessionID,
		Script:    o.Script,
		StartedAt: o.StartedAt,
		EndedAt:   o.EndedAt,
		Frames:    o.Frames,
		Width:     o.Size.W,
		Height:    o.Size.H,
		Reason:    string(o.Reason),
	}
	if o.Err != nil {
		rec.Error = o.Err.Error()
	}
	return rec
}

// ScriptStats contains aggregated statistics for a script.
type ScriptStats struct {
	Script      string
	Runs        int
	Failures    int
	TotalFrames int64
	LastRun     time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			script TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_script ON sessions(script);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSession records a finished session.
func (s *Store) SaveSession(rec SessionRecord) error {
	if rec.ID == "" {
		return errors.New("storage: session record without id")
	}

	var errText sql.NullString
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions
		 (id, script, started_at, ended_at, frames, width, height, reason, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Script,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.Frames,
		rec.Width,
		rec.Height,
		rec.Reason,
		errText,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

const sessionColumns = `id, script, started_at, ended_at, frames, width, height, reason, error`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (SessionRecord, error) {
	var rec SessionRecord
	var started, ended string
	var errText sql.NullString

	if err := row.Scan(
		&rec.ID,
		&rec.Script,
		&started,
		&ended,
		&rec.Frames,
		&rec.Width,
		&rec.Height,
		&rec.Reason,
		&errText,
	); err != nil {
		return rec, err
	}

	rec.StartedAt = parseTime(started)
	rec.EndedAt = parseTime(ended)
	if errText.Valid {
		rec.Error = errText.String
	}
	return rec, nil
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SessionByID retrieves a session by its ID.
// Returns nil without error if the session is unknown.
func (s *Store) SessionByID(id string) (*SessionRecord, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	return &rec, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
func (s *Store) RecentSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
}

// ScriptSessions retrieves the most recent sessions of one script.
func (s *Store) ScriptSessions(script string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions WHERE script = ? ORDER BY started_at DESC LIMIT ?`,
		script, limit,
	)
}

func (s *Store) querySessions(query string, args ...any) ([]SessionRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// ClearSessions deletes the history of one script.
func (s *Store) ClearSessions(script string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE script = ?", script)
	if err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

// GetScriptStats retrieves aggregated statistics for a script.
func (s *Store) GetScriptStats(script string) (*ScriptStats, error) {
	stats := &ScriptStats{Script: script}

	var last sql.NullString
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN reason = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(frames), 0),
		        MAX(started_at)
		 FROM sessions WHERE script = ?`,
		string(engine.ReasonError), script,
	).Scan(&stats.Runs, &stats.Failures, &stats.TotalFrames, &last)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get script stats: %w", err)
	}
	if last.Valid {
		stats.LastRun = parseTime(last.String)
	}

	return stats, nil
}
