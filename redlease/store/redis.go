package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var compareDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

var compareExpireScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
    return 0
end
`)

// Redis implements Store using a Redis backend. The conditional set maps
// to SET NX PX, the compare-and-act primitives run as Lua scripts so the
// check and the mutation happen in a single server-side step.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis store using the provided client. The client's
// connection lifecycle stays with the caller.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

// TrySet sets key=value with expiry ttl only if the key is absent.
func (r *Redis) TrySet(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, key, value, ttl).Result()
}

// CompareDelete deletes key iff its current value equals expected.
func (r *Redis) CompareDelete(ctx context.Context, key, expected string) (bool, error) {
	n, err := compareDeleteScript.Run(ctx, r.client, []string{key}, expected).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompareExpire resets key's expiry to ttl iff its current value equals expected.
func (r *Redis) CompareExpire(ctx context.Context, key, expected string, ttl time.Duration) (bool, error) {
	n, err := compareExpireScript.Run(ctx, r.client, []string{key}, expected, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Get returns the current value of key, with ok reporting whether the key exists.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}
