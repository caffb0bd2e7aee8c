// Package middleware exposes the HTTP adapter that guards consumer pages
// behind the session gate.
//
// # Guard
//
// [Guard] reads the session cookie pair set at login, calls Gate.Validate,
// and injects the authenticated [ssoGate.Identity] into the request context
// for UI gating ([IdentityFromContext]). Anything but an Active session is
// rejected with 401 so the page forces a re-login; Expired and Invalidated
// are deliberately indistinguishable at this surface.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Gate calls. It does NOT
// implement session policy itself — all decisions are delegated to
// Gate.Validate.
//
// # What this package must NOT do
//
//   - Inspect or compare tokens directly (delegates to the gate).
//   - Access the session store (the gate handles I/O).
//   - Distinguish rejection reasons in responses.
package middleware
