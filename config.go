package ssoGate

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by ssoGate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session  SessionConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by ssoGate APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// TTL is the sliding idle timeout. A session whose idle time exceeds
	// TTL (strictly) validates as Expired. Default 3600s.
	TTL time.Duration

	// PurgeOnLogin runs a best-effort sweep of idle-expired rows after each
	// successful login. Failures of the sweep never fail the login.
	PurgeOnLogin bool

	// RedisPrefix sets the key namespace when the gate is built against a
	// Redis-backed store via [Builder.WithRedis].
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by ssoGate APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	// Cost is the bcrypt cost used when hashing new passwords with
	// [password.Bcrypt.Hash]. Verification reads the cost from the stored
	// hash, so changing this never invalidates existing credentials.
	Cost int
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by ssoGate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by ssoGate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:          3600 * time.Second,
			PurgeOnLogin: true,
			RedisPrefix:  "sg",
		},
		Password: PasswordConfig{
			Cost: 12,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func defaultConfig() Config {
	return DefaultConfig()
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}
	if c.Session.TTL < time.Second {
		return errors.New("Session.TTL must be at least one second")
	}
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session.RedisPrefix must not be blank")
	}
	if c.Password.Cost < 4 || c.Password.Cost > 31 {
		return errors.New("Password.Cost must be within bcrypt bounds [4, 31]")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// Config carries only value fields; a plain copy is a full clone.
	return cfg
}
