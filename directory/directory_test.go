package directory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ssoGate "github.com/legacyplan/ssoGate"
)

const validTable = `
[users.grace]
name       = "Grace Chen"
pwd_hash   = "$2b$12$abcdefghijklmnopqrstuv"
role       = "advisor"
start_date = "2025-01-01"
end_date   = "2025-12-31"

[users.henry]
pwd_hash = "$2b$12$abcdefghijklmnopqrstuv"
`

func TestLoadValidTable(t *testing.T) {
	dir, err := Load(strings.NewReader(validTable))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if dir.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", dir.Len())
	}

	grace, err := dir.Find("grace")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if grace.DisplayName != "Grace Chen" || grace.Role != "advisor" {
		t.Fatalf("unexpected record: %+v", grace)
	}
	if grace.ValidFrom != time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start date: %s", grace.ValidFrom)
	}
	if grace.ValidUntil != time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected end date: %s", grace.ValidUntil)
	}

	// No name configured: the username doubles as the display name. No
	// window configured: both bounds stay zero.
	henry, err := dir.Find("henry")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if henry.DisplayName != "henry" {
		t.Fatalf("expected username as display name, got %q", henry.DisplayName)
	}
	if !henry.ValidFrom.IsZero() || !henry.ValidUntil.IsZero() {
		t.Fatalf("expected unrestricted window, got %+v", henry)
	}
}

func TestLoadRejectsMalformedTables(t *testing.T) {
	cases := []struct {
		name string
		toml string
	}{
		{"not toml", `{"users": {}}`},
		{"empty table", `title = "no users here"`},
		{"missing pwd_hash", `
[users.grace]
name = "Grace Chen"
`},
		{"start without end", `
[users.grace]
pwd_hash   = "$2b$12$x"
start_date = "2025-01-01"
`},
		{"end without start", `
[users.grace]
pwd_hash = "$2b$12$x"
end_date = "2025-12-31"
`},
		{"bad date format", `
[users.grace]
pwd_hash   = "$2b$12$x"
start_date = "01/02/2025"
end_date   = "2025-12-31"
`},
		{"end precedes start", `
[users.grace]
pwd_hash   = "$2b$12$x"
start_date = "2025-12-31"
end_date   = "2025-01-01"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.toml))
			if err == nil {
				t.Fatal("expected load to fail")
			}
			if !errors.Is(err, ssoGate.ErrConfigInvalid) {
				t.Fatalf("expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestFindUnknownUser(t *testing.T) {
	dir, err := Load(strings.NewReader(validTable))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := dir.Find("nobody"); !errors.Is(err, ssoGate.ErrNoSuchUser) {
		t.Fatalf("expected ErrNoSuchUser, got %v", err)
	}
}

func TestUsernamesSorted(t *testing.T) {
	dir, err := Load(strings.NewReader(validTable))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	names := dir.Usernames()
	if len(names) != 2 || names[0] != "grace" || names[1] != "henry" {
		t.Fatalf("expected sorted [grace henry], got %v", names)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	if err := os.WriteFile(path, []byte(validTable), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dir, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if dir.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", dir.Len())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, ssoGate.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for a missing file, got %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SSOGATE_TEST_USERS", validTable)

	dir, err := LoadEnv("SSOGATE_TEST_USERS")
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if dir.Len() != 2 {
		t.Fatalf("expected 2 users, got %d", dir.Len())
	}

	t.Setenv("SSOGATE_TEST_USERS", "   ")
	if _, err := LoadEnv("SSOGATE_TEST_USERS"); !errors.Is(err, ssoGate.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for a blank value, got %v", err)
	}
}
