package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldToken     = "token"
	fieldCreatedAt = "created_at"
	fieldLastSeen  = "last_seen"
)

const touchScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], "last_seen", ARGV[1])
  return 1
end
return 0
`

var touchLua = redis.NewScript(touchScript)

const purgeScript = `
local last_seen = redis.call("HGET", KEYS[1], "last_seen")
if last_seen and tonumber(last_seen) < tonumber(ARGV[1]) then
  redis.call("DEL", KEYS[1])
  return 1
end
return 0
`

var purgeLua = redis.NewScript(purgeScript)

// RedisStore is a Redis-backed [Store] holding one hash per username under a
// key prefix. Timestamps are stored as epoch seconds. Touch and purge use Lua
// compare-and-act scripts so a concurrent login is never half-updated or
// deleted out from under the user.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore creates a [RedisStore] on the given client. prefix sets the
// key namespace ("sg" yields keys like "sg:alice").
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		redis:  client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(username string) string {
	return s.prefix + ":" + username
}

// Put describes the put operation and its observable behavior.
//
// Put may return an error when input validation, dependency calls, or security checks fail.
// Put does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	err := s.redis.HSet(ctx, s.key(rec.Username),
		fieldToken, rec.Token,
		fieldCreatedAt, rec.CreatedAt.Unix(),
		fieldLastSeen, rec.LastSeen.Unix(),
	).Err()
	if err != nil {
		return fmt.Errorf("%w: put: %v", ErrUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Get(ctx context.Context, username string) (Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}

	createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: corrupt created_at for %q: %v", ErrUnavailable, username, err)
	}
	lastSeen, err := strconv.ParseInt(fields[fieldLastSeen], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: corrupt last_seen for %q: %v", ErrUnavailable, username, err)
	}

	return Record{
		Username:  username,
		Token:     fields[fieldToken],
		CreatedAt: time.Unix(createdAt, 0),
		LastSeen:  time.Unix(lastSeen, 0),
	}, nil
}

// Touch describes the touch operation and its observable behavior.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Touch(ctx context.Context, username string, now time.Time) error {
	err := touchLua.Run(ctx, s.redis, []string{s.key(username)}, now.Unix()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: touch: %v", ErrUnavailable, err)
	}
	return nil
}

// Remove describes the remove operation and its observable behavior.
//
// Remove may return an error when input validation, dependency calls, or security checks fail.
// Remove does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Remove(ctx context.Context, username string) error {
	if err := s.redis.Del(ctx, s.key(username)).Err(); err != nil {
		return fmt.Errorf("%w: remove: %v", ErrUnavailable, err)
	}
	return nil
}

// PurgeExpired describes the purgeexpired operation and its observable behavior.
//
// PurgeExpired may return an error when input validation, dependency calls, or security checks fail.
// PurgeExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	var (
		cursor uint64
		purged int
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+":*", 1000).Result()
		if err != nil {
			return purged, fmt.Errorf("%w: purge scan: %v", ErrUnavailable, err)
		}

		for _, key := range keys {
			deleted, err := purgeLua.Run(ctx, s.redis, []string{key}, cutoff.Unix()).Int()
			if err != nil && !errors.Is(err, redis.Nil) {
				return purged, fmt.Errorf("%w: purge: %v", ErrUnavailable, err)
			}
			purged += deleted
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return purged, nil
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
