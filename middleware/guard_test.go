package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	ssoGate "github.com/legacyplan/ssoGate"
	"github.com/legacyplan/ssoGate/password"
	"github.com/legacyplan/ssoGate/session"
)

type staticUsers map[string]ssoGate.UserRecord

func (s staticUsers) Find(username string) (ssoGate.UserRecord, error) {
	u, ok := s[username]
	if !ok {
		return ssoGate.UserRecord{}, ssoGate.ErrNoSuchUser
	}
	return u, nil
}

func newGuardedServer(t *testing.T) (*ssoGate.Gate, http.Handler) {
	t.Helper()

	hasher, err := password.NewBcrypt(password.Config{Cost: 4})
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	hash, err := hasher.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	cfg := ssoGate.DefaultConfig()
	cfg.Password.Cost = 4

	gate, err := ssoGate.New().
		WithConfig(cfg).
		WithStore(session.NewMemoryStore()).
		WithUserSource(staticUsers{
			"grace": {
				Username:     "grace",
				DisplayName:  "Grace Chen",
				PasswordHash: hash,
				Role:         "advisor",
			},
		}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(gate.Close)

	handler := Guard(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("expected identity in request context")
		}
		_, _ = w.Write([]byte("hello " + identity.DisplayName))
	}))

	return gate, handler
}

func request(cookies map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/planning", nil)
	r.RemoteAddr = "203.0.113.7:51234"
	for name, value := range cookies {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return r
}

func TestGuardRejectsMissingCookies(t *testing.T) {
	_, handler := newGuardedServer(t)

	cases := []struct {
		name    string
		cookies map[string]string
	}{
		{"no cookies", nil},
		{"user only", map[string]string{UserCookie: "grace"}},
		{"token only", map[string]string{TokenCookie: "deadbeef"}},
		{"empty values", map[string]string{UserCookie: "", TokenCookie: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, request(tc.cookies))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestGuardRejectsBadToken(t *testing.T) {
	gate, handler := newGuardedServer(t)

	if _, err := gate.Login(context.Background(), "grace", "correct-horse"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, request(map[string]string{
		UserCookie:  "grace",
		TokenCookie: "not-the-issued-token",
	}))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestGuardPassesActiveSession(t *testing.T) {
	gate, handler := newGuardedServer(t)

	token, err := gate.Login(context.Background(), "grace", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, request(map[string]string{
		UserCookie:  "grace",
		TokenCookie: token,
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Body.String(); got != "hello Grace Chen" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestGuardRejectsAfterLogout(t *testing.T) {
	gate, handler := newGuardedServer(t)
	ctx := context.Background()

	token, err := gate.Login(ctx, "grace", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := gate.Logout(ctx, "grace"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, request(map[string]string{
		UserCookie:  "grace",
		TokenCookie: token,
	}))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
}
