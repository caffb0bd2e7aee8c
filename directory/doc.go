// Package directory loads the configured user table into an immutable
// in-memory map and implements the gate's UserSource lookup.
//
// # Input format
//
// The table is TOML, one section per user, as deployed in a secrets file or
// an environment variable:
//
//	[users.grace]
//	name       = "Grace Chen"
//	pwd_hash   = "$2b$12$..."
//	role       = "advisor"
//	start_date = "2025-01-01"
//	end_date   = "2026-12-31"
//
// Only pwd_hash is required. name defaults to the username; role defaults to
// empty; start_date/end_date bound the login window (inclusive ISO dates)
// and must be supplied together or not at all.
//
// # Architecture boundaries
//
// The directory is read-only after Load and safe for concurrent lookups. It
// is reloaded only by restarting the process — there is no watch/reload
// machinery.
//
// # What this package must NOT do
//
//   - Verify passwords or evaluate the validity window (gate policy).
//   - Accept plaintext passwords: the pwd_hash field is stored verbatim and
//     a non-hash value simply never verifies.
package directory
