package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, registers as "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	username   TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	last_seen  INTEGER NOT NULL
)`

const sqliteUpsert = `
INSERT INTO sessions(username, token, created_at, last_seen)
VALUES(?, ?, ?, ?)
ON CONFLICT(username) DO UPDATE SET
	token      = excluded.token,
	created_at = excluded.created_at,
	last_seen  = excluded.last_seen`

// SQLiteStore is a file-backed [Store]. Sessions survive process restarts;
// the single-row upsert is atomic under SQLite's row-level locking, which is
// all the coordination the one-row-per-username model needs.
//
// Timestamps are persisted as epoch seconds, so sub-second precision is
// dropped on write.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at path
// and ensures the sessions table exists. The parent directory is created
// when missing. WAL journaling and a busy timeout are set through the DSN.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create session directory: %v", ErrUnavailable, err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ensure schema: %v", ErrUnavailable, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) Put(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, sqliteUpsert,
		rec.Username, rec.Token, rec.CreatedAt.Unix(), rec.LastSeen.Unix())
	if err != nil {
		return fmt.Errorf("%w: put: %v", ErrUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) Get(ctx context.Context, username string) (Record, error) {
	var (
		token     string
		createdAt int64
		lastSeen  int64
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT token, created_at, last_seen FROM sessions WHERE username = ?`, username)
	if err := row.Scan(&token, &createdAt, &lastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}

	return Record{
		Username:  username,
		Token:     token,
		CreatedAt: time.Unix(createdAt, 0),
		LastSeen:  time.Unix(lastSeen, 0),
	}, nil
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) Touch(ctx context.Context, username string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen = ? WHERE username = ?`, now.Unix(), username)
	if err != nil {
		return fmt.Errorf("%w: touch: %v", ErrUnavailable, err)
	}
	return nil
}

// Remove describes the remove operation and its observable behavior.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
// Remove does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) Remove(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("%w: remove: %v", ErrUnavailable, err)
	}
	return nil
}

// PurgeExpired describes the purgeexpired operation and its observable behavior.
//
// PurgeExpired may return an error when input validation, dependency calls, or security checks fail.
// PurgeExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE last_seen < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: purge: %v", ErrUnavailable, err)
	}

	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: purge count: %v", ErrUnavailable, err)
	}
	return int(purged), nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
