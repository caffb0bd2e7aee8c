package session

import "time"

// Record defines a public type used by ssoGate APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	// Username keys the record; at most one Record exists per username.
	Username string

	// Token is the opaque session token issued at login. Storage never
	// interprets it; the gate compares it against presented tokens.
	Token string

	CreatedAt time.Time
	LastSeen  time.Time
}
