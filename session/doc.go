// Package session provides durable per-username session persistence for the
// single-sign-on gate.
//
// # Storage model
//
// The store holds exactly one [Record] per username. [Store.Put] is an atomic
// upsert: writing a new record replaces the previous token, which is what
// revokes an earlier login. Every backend guarantees single-row atomicity;
// no cross-row transactions exist because no operation touches two rows.
//
// # Backends
//
//   - [SQLiteStore] — file-backed, survives process restarts. Default.
//   - [RedisStore]  — one hash per username under a configurable prefix.
//   - [MemoryStore] — mutex-guarded map for tests and demos.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT decide whether a session is
// expired or invalidated — the gate performs those checks against the
// [Record] timestamps it reads back.
//
// # What this package must NOT do
//
//   - Import ssoGate or directory (no upward imports).
//   - Compare tokens or enforce TTLs (policy belongs to the gate).
//   - Delete rows implicitly; only Remove and PurgeExpired delete.
package session
