// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history archives chat transcripts in SQLite so that a session can
// be reviewed after the process exits. Each chat session is identified by a
// UUID and its turns are numbered from 1 in the order they were appended.
// The archive is append-only and is never pruned.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-manager/pkg/types"
)

// timeLayout keeps fractional seconds at a fixed width so that stored
// timestamps sort lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when no session matches an ID or prefix.
	ErrNotFound = errors.New("session not found")

	// ErrAmbiguous is returned when a prefix matches more than one session.
	ErrAmbiguous = errors.New("session prefix is ambiguous")
)

// Archive is the transcript database.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures an Archive.
type Option func(*Archive)

// WithClock replaces the time source used to stamp turns.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

// Open opens or creates the archive at path, creating parent directories
// and the schema as needed.
func Open(path string, opts ...Option) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &Archive{db: db, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return a, nil
}

// Close releases the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id),
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id)`,
	}
	for _, stmt := range statements {
		if _, err := a.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Record appends turn to the session, creating the session on its first
// turn.
func (a *Archive) Record(ctx context.Context, sessionID string, turn types.Turn) error {
	now := a.now().UTC().Format(timeLayout)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`,
		sessionID, now,
	); err != nil {
		return fmt.Errorf("recording session: %w", err)
	}

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE session_id = ?`, sessionID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("computing turn sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, seq, string(turn.Role), turn.Content, now,
	); err != nil {
		return fmt.Errorf("recording turn: %w", err)
	}

	return tx.Commit()
}

// Sessions lists archived sessions, most recent first.
func (a *Archive) Sessions(ctx context.Context) ([]types.SessionSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, COUNT(t.rowid)
		FROM sessions s LEFT JOIN turns t ON t.session_id = s.id
		GROUP BY s.id, s.started_at
		ORDER BY s.started_at DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []types.SessionSummary
	for rows.Next() {
		var s types.SessionSummary
		var started string
		if err := rows.Scan(&s.SessionID, &started, &s.Turns); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if s.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing session time: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Resolve expands a session ID prefix to the full ID.
func (a *Archive) Resolve(ctx context.Context, prefix string) (string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE substr(id, 1, length(?)) = ? ORDER BY id LIMIT 2`,
		prefix, prefix)
	if err != nil {
		return "", fmt.Errorf("resolving session: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguous, prefix)
	}
}

// Turns returns the turns of one session in order.
func (a *Archive) Turns(ctx context.Context, sessionID string) ([]types.ArchivedTurn, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT seq, role, content, created_at FROM turns WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var out []types.ArchivedTurn
	for rows.Next() {
		t := types.ArchivedTurn{SessionID: sessionID}
		var role, created string
		if err := rows.Scan(&t.Seq, &role, &t.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = types.Role(role)
		if t.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parsing turn time: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// WriteYAML writes turns as a YAML sequence.
func WriteYAML(w io.Writer, turns []types.ArchivedTurn) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(turns); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Recorder binds an Archive to one session ID.
type Recorder struct {
	archive   *Archive
	sessionID string
}

// NewRecorder returns a Recorder for a fresh session.
func (a *Archive) NewRecorder() *Recorder {
	return &Recorder{archive: a, sessionID: NewSessionID()}
}

// SessionID returns the session the recorder currently writes to.
func (r *Recorder) SessionID() string { return r.sessionID }

// Record appends turn to the current session.
func (r *Recorder) Record(ctx context.Context, turn types.Turn) error {
	return r.archive.Record(ctx, r.sessionID, turn)
}

// Rotate starts a new session for subsequent turns and returns its ID.
func (r *Recorder) Rotate() string {
	r.sessionID = NewSessionID()
	return r.sessionID
}
