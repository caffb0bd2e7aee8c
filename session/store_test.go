package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Conformance suite run against every Store implementation. Timestamps are
// second-aligned because the SQLite and Redis backends persist epoch seconds.

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()

	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			return store
		},
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			return NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "sg")
		},
	}
}

func forEachBackend(t *testing.T, run func(t *testing.T, store Store)) {
	t.Helper()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })
			run(t, store)
		})
	}
}

func at(epoch int64) time.Time { return time.Unix(epoch, 0) }

func TestStorePutGetRoundtrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		rec := Record{
			Username:  "grace",
			Token:     "aabbccdd",
			CreatedAt: at(1_700_000_000),
			LastSeen:  at(1_700_000_000),
		}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		got, err := store.Get(ctx, "grace")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Username != rec.Username || got.Token != rec.Token {
			t.Fatalf("roundtrip mismatch: %+v", got)
		}
		if got.CreatedAt.Unix() != rec.CreatedAt.Unix() || got.LastSeen.Unix() != rec.LastSeen.Unix() {
			t.Fatalf("timestamp mismatch: %+v", got)
		}
	})
}

func TestStoreGetMissing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStorePutReplacesToken(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		first := Record{Username: "grace", Token: "first", CreatedAt: at(100), LastSeen: at(100)}
		second := Record{Username: "grace", Token: "second", CreatedAt: at(200), LastSeen: at(200)}

		if err := store.Put(ctx, first); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := store.Put(ctx, second); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		got, err := store.Get(ctx, "grace")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Token != "second" {
			t.Fatalf("expected the newer token, got %q", got.Token)
		}
		if got.CreatedAt.Unix() != 200 {
			t.Fatalf("expected created_at replaced, got %d", got.CreatedAt.Unix())
		}
	})
}

func TestStoreTouch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		rec := Record{Username: "grace", Token: "tok", CreatedAt: at(100), LastSeen: at(100)}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		if err := store.Touch(ctx, "grace", at(500)); err != nil {
			t.Fatalf("Touch failed: %v", err)
		}

		got, err := store.Get(ctx, "grace")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.LastSeen.Unix() != 500 {
			t.Fatalf("expected last_seen 500, got %d", got.LastSeen.Unix())
		}
		if got.CreatedAt.Unix() != 100 {
			t.Fatalf("Touch must not move created_at, got %d", got.CreatedAt.Unix())
		}
		if got.Token != "tok" {
			t.Fatalf("Touch must not change the token, got %q", got.Token)
		}
	})
}

func TestStoreTouchMissingIsNoOp(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		if err := store.Touch(ctx, "nobody", at(500)); err != nil {
			t.Fatalf("Touch on absent record must not error: %v", err)
		}
		if _, err := store.Get(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Touch must not create a record, got %v", err)
		}
	})
}

func TestStoreRemoveIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		rec := Record{Username: "grace", Token: "tok", CreatedAt: at(100), LastSeen: at(100)}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		if err := store.Remove(ctx, "grace"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := store.Get(ctx, "grace"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected record gone, got %v", err)
		}

		// Second removal of the same username, and removal of a username that
		// never existed, both succeed.
		if err := store.Remove(ctx, "grace"); err != nil {
			t.Fatalf("repeated Remove failed: %v", err)
		}
		if err := store.Remove(ctx, "nobody"); err != nil {
			t.Fatalf("Remove of absent record failed: %v", err)
		}
	})
}

func TestStorePurgeExpired(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx := context.Background()

		rows := []Record{
			{Username: "stale", Token: "t1", CreatedAt: at(100), LastSeen: at(100)},
			{Username: "boundary", Token: "t2", CreatedAt: at(100), LastSeen: at(500)},
			{Username: "fresh", Token: "t3", CreatedAt: at(100), LastSeen: at(900)},
		}
		for _, rec := range rows {
			if err := store.Put(ctx, rec); err != nil {
				t.Fatalf("Put %s failed: %v", rec.Username, err)
			}
		}

		// Cutoff is exclusive: last_seen strictly before 500 goes, 500 stays.
		purged, err := store.PurgeExpired(ctx, at(500))
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if purged != 1 {
			t.Fatalf("expected 1 purged, got %d", purged)
		}

		if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected stale purged, got %v", err)
		}
		for _, username := range []string{"boundary", "fresh"} {
			if _, err := store.Get(ctx, username); err != nil {
				t.Fatalf("expected %s kept, got %v", username, err)
			}
		}
	})
}

func TestStorePurgeEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		purged, err := store.PurgeExpired(context.Background(), at(1_000_000))
		if err != nil {
			t.Fatalf("PurgeExpired failed: %v", err)
		}
		if purged != 0 {
			t.Fatalf("expected 0 purged from empty store, got %d", purged)
		}
	})
}

func TestStoreCancelledContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, store Store) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rec := Record{Username: "grace", Token: "tok", CreatedAt: at(100), LastSeen: at(100)}
		if err := store.Put(ctx, rec); err == nil {
			t.Fatal("expected Put to fail on a cancelled context")
		}
	})
}
