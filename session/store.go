package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by [Store.Get] when no record exists for the
// username.
var ErrNotFound = errors.New("session record not found")

// ErrUnavailable wraps backend I/O failures (file errors, Redis outages).
// Callers treat it as fatal for the current request; nothing is retried.
var ErrUnavailable = errors.New("session backend unavailable")

// Store is the persistence contract the gate validates against. One record
// per username; Put is an atomic upsert that replaces any prior token.
//
// Concurrent writers to different usernames never conflict. Concurrent
// writers to the same username race under last-write-wins, which implements
// the single-sign-on guarantee rather than violating it.
type Store interface {
	// Put upserts the record keyed by rec.Username, replacing any existing
	// token for that user.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for username, or an error matching
	// [ErrNotFound] when absent.
	Get(ctx context.Context, username string) (Record, error)

	// Touch updates LastSeen for username. Touching an absent record is not
	// an error; the next Get simply reports [ErrNotFound].
	Touch(ctx context.Context, username string, now time.Time) error

	// Remove deletes the record. Removing an absent record is a no-op.
	Remove(ctx context.Context, username string) error

	// PurgeExpired deletes records whose LastSeen is strictly before cutoff
	// and reports how many were removed.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases backend resources. The store must not be used after.
	Close() error
}
