package ssoGate

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legacyplan/ssoGate/password"
	"github.com/legacyplan/ssoGate/session"
)

// Builder defines a public type used by ssoGate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	store session.Store
	redis *redis.Client

	users     UserSource
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore supplies a prepared session store (SQLite, memory, or a custom
// implementation). Mutually exclusive with [Builder.WithRedis].
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis is a convenience that builds a [session.RedisStore] on the given
// client at Build time, using Config.Session.RedisPrefix as the namespace.
// Mutually exclusive with [Builder.WithStore].
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserSource describes the withusersource operation and its observable behavior.
//
// WithUserSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserSource(users UserSource) *Builder {
	b.users = users
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithClock overrides the gate's time source. Intended for tests that pin
// "now" to exercise TTL and validity-window boundaries; production builds
// leave it unset and use time.Now.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Gate, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.store == nil && b.redis == nil {
		return nil, errors.New("session store required (WithStore or WithRedis)")
	}
	if b.store != nil && b.redis != nil {
		return nil, errors.New("WithStore and WithRedis are mutually exclusive")
	}

	if b.users == nil {
		return nil, errors.New("user source required")
	}

	// -------- SESSION STORE --------
	store := b.store
	if store == nil {
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	// -------- PASSWORD HASHER --------
	hasher, err := password.NewBcrypt(password.Config{
		Cost: cfg.Password.Cost,
	})
	if err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	gate := &Gate{
		config:       cfg,
		sessionStore: store,
		users:        b.users,
		passwordHash: hasher,
		now:          clock,
	}
	gate.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	gate.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return gate, nil
}
