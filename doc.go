// Package ssoGate provides a single-sign-on session gate with a configured
// user directory, opaque session tokens, and pluggable durable session stores
// (SQLite, Redis, in-memory).
//
// The package is designed to sit in front of a web application whose pages
// call [Gate.Login], [Gate.Validate], and [Gate.Logout]. Gate methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Single-sign-on contract
//
// At most one valid session token exists per username at any time. A new
// login overwrites the stored session row for that user, which invalidates
// the previous token immediately. Concurrent logins for the same user race
// under last-write-wins; that is the intended semantics, not a defect.
//
// # Architecture boundaries
//
// ssoGate is the public surface. It exposes [Gate], [Builder], [Config], and
// value types (SessionStatus, Identity, AuditEvent, MetricsSnapshot). Session
// persistence lives under session/, credential hashing under password/, and
// the user-table loader under directory/. session/ and password/ never
// import the root package; directory/ and middleware/ import it one-way for
// the shared types (the root imports neither, so no cycles exist).
//
// # What this package must NOT do
//
//   - Expose storage handles, SQL, or Redis key layouts in its public API.
//   - Reveal which login failure mode occurred to an end user: every
//     credential failure matches [ErrInvalidCredentials] so callers can show
//     a single undifferentiated message.
//   - Retry failed operations or re-login automatically. Expiration is a
//     passive check at validation time; there are no background timers.
package ssoGate
