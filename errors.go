package ssoGate

import "errors"

var (
	// ErrInvalidCredentials is an exported constant or variable used by the session gate.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoSuchUser is an exported constant or variable used by the session gate.
	ErrNoSuchUser = errors.New("no such user")
	// ErrBadCredential is an exported constant or variable used by the session gate.
	ErrBadCredential = errors.New("password mismatch")
	// ErrOutsideValidityWindow is an exported constant or variable used by the session gate.
	ErrOutsideValidityWindow = errors.New("account outside validity window")
	// ErrConfigInvalid is an exported constant or variable used by the session gate.
	ErrConfigInvalid = errors.New("invalid user table configuration")
	// ErrStoreUnavailable is an exported constant or variable used by the session gate.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrGateNotReady is an exported constant or variable used by the session gate.
	ErrGateNotReady = errors.New("gate not initialized")
	// ErrTokenGeneration is an exported constant or variable used by the session gate.
	ErrTokenGeneration = errors.New("session token generation failed")
)

// loginError wraps a specific login failure so that it also matches the
// undifferentiated ErrInvalidCredentials sentinel. The gate returns the
// specific reason for audit and metrics; the HTTP surface checks only the
// sentinel, so no detail about which step failed leaks to an end user.
type loginError struct {
	reason error
}

func (e *loginError) Error() string {
	return ErrInvalidCredentials.Error() + ": " + e.reason.Error()
}

func (e *loginError) Is(target error) bool {
	return target == ErrInvalidCredentials || errors.Is(e.reason, target)
}

func (e *loginError) Unwrap() error {
	return e.reason
}

func denyLogin(reason error) error {
	return &loginError{reason: reason}
}
