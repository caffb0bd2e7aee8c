package ssoGate

import "time"

// SessionStatus classifies the outcome of [Gate.Validate].
//
//	Active      — token matches and the session is within its idle TTL.
//	Expired     — token matches but the idle TTL has elapsed.
//	Invalidated — no session row exists, or a newer login replaced the token.
type SessionStatus uint8

const (
	// StatusActive is an exported constant or variable used by the session gate.
	StatusActive SessionStatus = iota
	// StatusExpired is an exported constant or variable used by the session gate.
	StatusExpired
	// StatusInvalidated is an exported constant or variable used by the session gate.
	StatusInvalidated
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s SessionStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// UserRecord is the full account record returned by [UserSource]. It carries
// the bcrypt credential hash, the display name and role surfaced to the UI,
// and the inclusive validity window during which the account may log in.
//
// UserRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserRecord struct {
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string

	// ValidFrom and ValidUntil bound the login window at date granularity,
	// inclusive on both ends. Zero values mean the bound is absent.
	ValidFrom  time.Time
	ValidUntil time.Time
}

// InWindow reports whether the record may authenticate on the given day.
// Comparison is at calendar-date granularity — each timestamp's own year,
// month and day, regardless of its location — so an instant anywhere on a
// boundary date is inside the window.
func (u UserRecord) InWindow(now time.Time) bool {
	day := truncateToDate(now)
	if !u.ValidFrom.IsZero() && day.Before(truncateToDate(u.ValidFrom)) {
		return false
	}
	if !u.ValidUntil.IsZero() && day.After(truncateToDate(u.ValidUntil)) {
		return false
	}
	return true
}

// truncateToDate rebuilds t's calendar date as a UTC midnight. Reading the
// date components in t's own location and rebuilding in a single fixed
// location keeps window comparisons meaningful when the gate clock and the
// parsed bounds carry different zones.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UserSource is the interface the [Gate] uses to look up configured users.
// [directory.Directory] is the standard implementation; tests may supply
// stubs. Lookups must be safe for concurrent use and must return an error
// matching [ErrNoSuchUser] when the username is not configured.
type UserSource interface {
	Find(username string) (UserRecord, error)
}

// Identity is the read accessor returned by [Gate.Identity] for UI gating.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	Username    string
	DisplayName string
	Role        string
}
