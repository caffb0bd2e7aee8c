package ssoGate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/legacyplan/ssoGate/internal"
	"github.com/legacyplan/ssoGate/password"
	"github.com/legacyplan/ssoGate/session"
)

// Gate defines a public type used by ssoGate APIs.
//
// Gate instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Gate struct {
	config       Config
	sessionStore session.Store
	users        UserSource
	passwordHash *password.Bcrypt
	audit        *auditDispatcher
	metrics      *Metrics
	now          func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gate) Close() {
	if g == nil {
		return
	}
	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gate) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Gate) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return g.metrics.Snapshot()
}

func (g *Gate) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

// timeNow reads the gate clock at second precision. The durable stores
// persist epoch seconds, so TTL arithmetic must not carry sub-second
// precision the read-back timestamps lack.
func (g *Gate) timeNow() time.Time {
	return g.now().Truncate(time.Second)
}

// Login authenticates username/password against the configured directory and
// issues a fresh session token. Issuing always overwrites the stored session
// row for that user, so any concurrently active session is invalidated —
// that is the single-sign-on guarantee, and it holds even when two logins
// race (last write wins).
//
// Every credential failure — unknown user, validity window, password
// mismatch — returns an error that matches both its specific sentinel
// ([ErrNoSuchUser], [ErrOutsideValidityWindow], [ErrBadCredential]) and the
// undifferentiated [ErrInvalidCredentials], so surfaces that must not leak
// which step failed check only the latter. Failures are never retried.
func (g *Gate) Login(ctx context.Context, username, passwd string) (string, error) {
	if g == nil || g.sessionStore == nil {
		return "", ErrGateNotReady
	}
	now := g.timeNow()

	user, err := g.users.Find(username)
	if err != nil {
		if errors.Is(err, ErrNoSuchUser) {
			return "", g.denyLogin(ctx, username, ErrNoSuchUser)
		}
		return "", err
	}

	if !user.InWindow(now) {
		return "", g.denyLogin(ctx, username, ErrOutsideValidityWindow)
	}

	if !g.passwordHash.Verify(passwd, user.PasswordHash) {
		return "", g.denyLogin(ctx, username, ErrBadCredential)
	}

	token, err := internal.NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	rec := session.Record{
		Username:  username,
		Token:     token,
		CreatedAt: now,
		LastSeen:  now,
	}
	if err := g.sessionStore.Put(ctx, rec); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if g.config.Session.PurgeOnLogin {
		// Best effort; a failed sweep must not fail the login that triggered it.
		if purged, perr := g.sessionStore.PurgeExpired(ctx, now.Add(-g.config.Session.TTL)); perr == nil {
			g.metricAdd(MetricSessionsPurged, uint64(purged))
		}
	}

	g.metricInc(MetricLoginSuccess)
	g.emitAudit(ctx, AuditEvent{
		Timestamp: now,
		EventType: AuditLoginSuccess,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})

	return token, nil
}

// Validate checks the presented token for username against the stored
// session row and reports one of the three [SessionStatus] values:
//
//   - [StatusInvalidated] — no row exists (logged out, purged) or the stored
//     token differs (a newer login replaced it).
//   - [StatusExpired] — tokens match but the idle time strictly exceeds the
//     configured TTL. Idle time of exactly the TTL is still Active.
//   - [StatusActive] — tokens match within the TTL; as a side effect the
//     row's LastSeen is refreshed (sliding expiration).
//
// Expiration is decided here, passively, at the moment of validation; no
// timer fires when a session crosses its TTL. On storage failure the
// returned status is meaningless and the error wraps [ErrStoreUnavailable].
func (g *Gate) Validate(ctx context.Context, username, token string) (SessionStatus, error) {
	if g == nil || g.sessionStore == nil {
		return StatusInvalidated, ErrGateNotReady
	}
	now := g.timeNow()

	rec, err := g.sessionStore.Get(ctx, username)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			g.metricInc(MetricValidateInvalidated)
			return StatusInvalidated, nil
		}
		return StatusInvalidated, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !internal.TokensEqual(rec.Token, token) {
		g.metricInc(MetricValidateInvalidated)
		g.emitAudit(ctx, AuditEvent{
			Timestamp: now,
			EventType: AuditSessionInvalidated,
			Username:  username,
			IP:        clientIPFromContext(ctx),
			Success:   false,
			Error:     "token superseded by newer login",
		})
		return StatusInvalidated, nil
	}

	if now.Sub(rec.LastSeen) > g.config.Session.TTL {
		g.metricInc(MetricValidateExpired)
		g.emitAudit(ctx, AuditEvent{
			Timestamp: now,
			EventType: AuditSessionExpired,
			Username:  username,
			IP:        clientIPFromContext(ctx),
			Success:   false,
			Error:     "idle timeout exceeded",
		})
		return StatusExpired, nil
	}

	if err := g.sessionStore.Touch(ctx, username, now); err != nil {
		return StatusActive, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	g.metricInc(MetricValidateActive)
	return StatusActive, nil
}

// Logout removes the session row for username unconditionally. Logging out a
// user with no session is a no-op, so the operation is idempotent; a later
// Validate with the old token reports [StatusInvalidated].
func (g *Gate) Logout(ctx context.Context, username string) error {
	if g == nil || g.sessionStore == nil {
		return ErrGateNotReady
	}

	if err := g.sessionStore.Remove(ctx, username); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	g.metricInc(MetricLogout)
	g.emitAudit(ctx, AuditEvent{
		Timestamp: g.timeNow(),
		EventType: AuditLogout,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})
	return nil
}

// Identity returns the display name and role configured for username, for UI
// gating by the consumer pages. It never touches the session store.
func (g *Gate) Identity(username string) (Identity, error) {
	if g == nil || g.users == nil {
		return Identity{}, ErrGateNotReady
	}

	user, err := g.users.Find(username)
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	}, nil
}

func (g *Gate) denyLogin(ctx context.Context, username string, reason error) error {
	g.metricInc(MetricLoginFailure)
	g.emitAudit(ctx, AuditEvent{
		Timestamp: g.timeNow(),
		EventType: AuditLoginDenied,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   false,
		Error:     reason.Error(),
	})
	return denyLogin(reason)
}

func (g *Gate) emitAudit(ctx context.Context, event AuditEvent) {
	if g == nil || g.audit == nil {
		return
	}
	g.audit.Emit(ctx, event)
}

func (g *Gate) metricAdd(id MetricID, n uint64) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Add(id, n)
}
