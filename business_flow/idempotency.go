package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers the outcome of generate requests keyed by a client-chosen key.
// Begin returns the stored payload when the key already completed, or acquired=false
// while another request holding the key is still running.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (cached []byte, acquired bool, err error)
	Complete(ctx context.Context, key string, payload []byte) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore implements IdempotencyStore with a SetNX lock and a result key per request
type RedisIdempotencyStore struct {
	rc      *redis.Client
	prefix  string
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisIdempotencyStore returns nil when rc is nil so callers can pass the result straight to a flow
func NewRedisIdempotencyStore(rc *redis.Client, prefix string, ttl, lockTTL time.Duration) IdempotencyStore {
	if rc == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &RedisIdempotencyStore{rc: rc, prefix: prefix, ttl: ttl, lockTTL: lockTTL}
}

func (s *RedisIdempotencyStore) resultKey(key string) string {
	return s.prefix + "idempotency:result:" + key
}

func (s *RedisIdempotencyStore) lockKey(key string) string {
	return s.prefix + "idempotency:lock:" + key
}

func (s *RedisIdempotencyStore) Begin(ctx context.Context, key string) ([]byte, bool, error) {
	bs, err := s.rc.Get(ctx, s.resultKey(key)).Bytes()
	if err == nil && len(bs) > 0 {
		return bs, false, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, fmt.Errorf("failed to read idempotency result: %w", err)
	}

	acquired, err := s.rc.SetNX(ctx, s.lockKey(key), "1", s.lockTTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire idempotency lock: %w", err)
	}
	return nil, acquired, nil
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, payload []byte) error {
	_, err := s.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.resultKey(key), payload, s.ttl)
		pipe.Del(ctx, s.lockKey(key))
		return nil
	})
	return err
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rc.Del(ctx, s.lockKey(key)).Err()
}

// runIdempotent executes fn at most once per (scope, key) while the stored result lives.
// A store failure degrades to plain execution.
func runIdempotent[T any](ctx context.Context, store IdempotencyStore, scope, key string, fn func() (*T, error)) (*T, error) {
	if store == nil || key == "" {
		return fn()
	}
	fullKey := scope + ":" + key

	cached, acquired, err := store.Begin(ctx, fullKey)
	if err != nil {
		log.Printf("Idempotency store unavailable for %s: %v", fullKey, err)
		return fn()
	}
	if cached != nil {
		var out T
		if err := json.Unmarshal(cached, &out); err == nil {
			return &out, nil
		}
		log.Printf("Discarding unreadable idempotency result for %s", fullKey)
	}
	if !acquired && cached == nil {
		return nil, NewBusinessError("REQUEST_IN_PROGRESS", "A request with this idempotency key is still being processed", ErrRequestInProgress)
	}

	out, err := fn()
	if err != nil {
		if releaseErr := store.Release(ctx, fullKey); releaseErr != nil {
			log.Printf("Failed to release idempotency lock %s: %v", fullKey, releaseErr)
		}
		return nil, err
	}

	if payload, err := json.Marshal(out); err == nil {
		if err := store.Complete(ctx, fullKey, payload); err != nil {
			log.Printf("Failed to store idempotency result %s: %v", fullKey, err)
		}
	}
	return out, nil
}
