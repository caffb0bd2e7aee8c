package directory

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	ssoGate "github.com/legacyplan/ssoGate"
)

const dateLayout = "2006-01-02"

type userEntry struct {
	Name      string `toml:"name"`
	PwdHash   string `toml:"pwd_hash"`
	Role      string `toml:"role"`
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`
}

type userTable struct {
	Users map[string]userEntry `toml:"users"`
}

// Directory is the loaded user table. It implements [ssoGate.UserSource] and
// is immutable after Load; lookups are safe for concurrent use.
type Directory struct {
	users map[string]ssoGate.UserRecord
}

// Load parses a TOML user table from r. Malformed entries — a missing
// pwd_hash, an unparseable date, a start date after the end date, or one
// window bound without the other — fail the whole load with an error
// matching [ssoGate.ErrConfigInvalid] that names the offending user and
// field. An empty [users] table is also a configuration error: a gate with
// no users can never authenticate anyone.
func Load(r io.Reader) (*Directory, error) {
	var table userTable
	if _, err := toml.NewDecoder(r).Decode(&table); err != nil {
		return nil, fmt.Errorf("%w: %v", ssoGate.ErrConfigInvalid, err)
	}
	if len(table.Users) == 0 {
		return nil, fmt.Errorf("%w: no [users] entries", ssoGate.ErrConfigInvalid)
	}

	users := make(map[string]ssoGate.UserRecord, len(table.Users))
	for username, entry := range table.Users {
		rec, err := buildRecord(username, entry)
		if err != nil {
			return nil, err
		}
		users[username] = rec
	}

	return &Directory{users: users}, nil
}

// LoadFile describes the loadfile operation and its observable behavior.
//
// LoadFile may return an error when input validation, dependency calls, or security checks fail.
// LoadFile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open user table: %v", ssoGate.ErrConfigInvalid, err)
	}
	defer f.Close()

	return Load(f)
}

// LoadEnv parses the user table from the named environment variable, for
// deployments that inject the secrets blob directly instead of mounting a
// file.
func LoadEnv(envVar string) (*Directory, error) {
	blob, ok := os.LookupEnv(envVar)
	if !ok || strings.TrimSpace(blob) == "" {
		return nil, fmt.Errorf("%w: environment variable %s is empty", ssoGate.ErrConfigInvalid, envVar)
	}
	return Load(strings.NewReader(blob))
}

// Find describes the find operation and its observable behavior.
//
// Find may return an error when input validation, dependency calls, or security checks fail.
// Find does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Find(username string) (ssoGate.UserRecord, error) {
	rec, ok := d.users[username]
	if !ok {
		return ssoGate.UserRecord{}, ssoGate.ErrNoSuchUser
	}
	return rec, nil
}

// Usernames returns the configured usernames in sorted order, for startup
// logging and diagnostics.
func (d *Directory) Usernames() []string {
	names := make([]string, 0, len(d.users))
	for name := range d.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len describes the len operation and its observable behavior.
//
// Len does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Directory) Len() int {
	return len(d.users)
}

func buildRecord(username string, entry userEntry) (ssoGate.UserRecord, error) {
	if strings.TrimSpace(username) == "" {
		return ssoGate.UserRecord{}, fmt.Errorf("%w: blank username", ssoGate.ErrConfigInvalid)
	}
	if strings.TrimSpace(entry.PwdHash) == "" {
		return ssoGate.UserRecord{}, fmt.Errorf("%w: user %q: missing pwd_hash", ssoGate.ErrConfigInvalid, username)
	}

	if (entry.StartDate == "") != (entry.EndDate == "") {
		return ssoGate.UserRecord{}, fmt.Errorf(
			"%w: user %q: start_date and end_date must be supplied together", ssoGate.ErrConfigInvalid, username)
	}

	rec := ssoGate.UserRecord{
		Username:     username,
		DisplayName:  entry.Name,
		PasswordHash: entry.PwdHash,
		Role:         entry.Role,
	}
	if rec.DisplayName == "" {
		rec.DisplayName = username
	}

	if entry.StartDate != "" {
		start, err := time.Parse(dateLayout, entry.StartDate)
		if err != nil {
			return ssoGate.UserRecord{}, fmt.Errorf(
				"%w: user %q: start_date %q is not an ISO date", ssoGate.ErrConfigInvalid, username, entry.StartDate)
		}
		end, err := time.Parse(dateLayout, entry.EndDate)
		if err != nil {
			return ssoGate.UserRecord{}, fmt.Errorf(
				"%w: user %q: end_date %q is not an ISO date", ssoGate.ErrConfigInvalid, username, entry.EndDate)
		}
		if end.Before(start) {
			return ssoGate.UserRecord{}, fmt.Errorf(
				"%w: user %q: end_date precedes start_date", ssoGate.ErrConfigInvalid, username)
		}
		rec.ValidFrom = start
		rec.ValidUntil = end
	}

	return rec, nil
}
