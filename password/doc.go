// Package password implements credential hashing and verification with
// bcrypt.
//
// # Output format
//
// Hashes are standard bcrypt modular-crypt strings ($2a$/$2b$ prefixes).
// Verification reads the cost from the stored hash, so a cost change in
// configuration never invalidates existing credentials.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Whether an account may
// log in at all (validity window, session policy) is enforced by the gate.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive
//     hashes.
//   - Import any other ssoGate package.
//   - Log plaintext passwords at runtime.
package password
