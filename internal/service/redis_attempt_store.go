package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/authform/authform/internal/utils"

	"github.com/redis/go-redis/v9"
)

const (
	attemptCountField = "count"
	attemptFirstField = "first"
)

// recordFailureScript restarts the hash when its window has ended and sets
// the key to expire with the window, so idle counters collect themselves.
// KEYS[1] is the counter, ARGV[1] now and ARGV[2] the window, both in ms.
var recordFailureScript = redis.NewScript(`
local first = redis.call("HGET", KEYS[1], "first")
if not first or tonumber(ARGV[1]) - tonumber(first) >= tonumber(ARGV[2]) then
	redis.call("DEL", KEYS[1])
	redis.call("HSET", KEYS[1], "first", ARGV[1])
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
	first = ARGV[1]
end
local count = redis.call("HINCRBY", KEYS[1], "count", 1)
return {count, first}
`)

// RedisAttemptStore shares counters between instances. Keys hold the digest
// of the identifier.
type RedisAttemptStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisAttemptStore(client redis.UniversalClient, prefix string) *RedisAttemptStore {
	return &RedisAttemptStore{
		client: client,
		prefix: prefix,
	}
}

func (store *RedisAttemptStore) key(identifier string) string {
	return store.prefix + "attempts:" + utils.Digest(identifier)
}

func (store *RedisAttemptStore) GetAttempt(ctx context.Context, identifier string) (*LoginAttempt, error) {
	values, err := store.client.HGetAll(ctx, store.key(identifier)).Result()

	if err != nil {
		return nil, fmt.Errorf("failed to read login attempts: %w", err)
	}

	if len(values) == 0 {
		return nil, nil
	}

	return parseAttempt(values)
}

func (store *RedisAttemptStore) RecordFailure(ctx context.Context, identifier string, now time.Time, window time.Duration) (LoginAttempt, error) {
	values, err := recordFailureScript.Run(ctx, store.client, []string{store.key(identifier)}, now.UnixMilli(), window.Milliseconds()).Slice()

	if err != nil {
		return LoginAttempt{}, fmt.Errorf("failed to record login failure: %w", err)
	}

	if len(values) != 2 {
		return LoginAttempt{}, fmt.Errorf("unexpected script reply of length %d", len(values))
	}

	attempt, err := parseAttempt(map[string]string{
		attemptCountField: fmt.Sprint(values[0]),
		attemptFirstField: fmt.Sprint(values[1]),
	})

	if err != nil {
		return LoginAttempt{}, err
	}

	return *attempt, nil
}

func (store *RedisAttemptStore) ResetAttempts(ctx context.Context, identifier string) error {
	if err := store.client.Del(ctx, store.key(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// DeleteExpired has nothing to do, keys expire with their window.
func (store *RedisAttemptStore) DeleteExpired(_ context.Context, _ time.Time, _ time.Duration) (int, error) {
	return 0, nil
}

func parseAttempt(values map[string]string) (*LoginAttempt, error) {
	count, err := strconv.Atoi(values[attemptCountField])

	if err != nil {
		return nil, fmt.Errorf("invalid attempt count: %w", err)
	}

	first, err := strconv.ParseInt(values[attemptFirstField], 10, 64)

	if err != nil {
		return nil, fmt.Errorf("invalid attempt timestamp: %w", err)
	}

	return &LoginAttempt{
		Count:        count,
		FirstFailure: time.UnixMilli(first),
	}, nil
}
