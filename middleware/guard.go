package middleware

import (
	"context"
	"net"
	"net/http"

	ssoGate "github.com/legacyplan/ssoGate"
)

const (
	// UserCookie is an exported constant or variable used by the session gate.
	UserCookie = "sso_user"
	// TokenCookie is an exported constant or variable used by the session gate.
	TokenCookie = "sso_token"
)

type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity injected by
// [Guard], for handlers that gate UI elements on role or greet the user by
// display name.
func IdentityFromContext(ctx context.Context) (ssoGate.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(ssoGate.Identity)
	return id, ok
}

// Guard describes the guard operation and its observable behavior.
//
// Guard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Guard(gate *ssoGate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			username, token, ok := sessionCookies(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ssoGate.WithClientIP(r.Context(), remoteIP(r))

			status, err := gate.Validate(ctx, username, token)
			if err != nil || status != ssoGate.StatusActive {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := gate.Identity(username)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionCookies(r *http.Request) (username, token string, ok bool) {
	userCookie, err := r.Cookie(UserCookie)
	if err != nil || userCookie.Value == "" {
		return "", "", false
	}
	tokenCookie, err := r.Cookie(TokenCookie)
	if err != nil || tokenCookie.Value == "" {
		return "", "", false
	}
	return userCookie.Value, tokenCookie.Value, true
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
