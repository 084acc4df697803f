package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/naschastye/salesim/internal/domain"
)

// Store is a Redis-backed state store for deployments that replicate the
// service horizontally behind one shared store.
type Store struct {
	client *redis.Client
	ttl    time.Duration // 0 = keep forever
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets an expiry on every written key. Sessions are never evicted by
// default; this is an operator opt-in.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func NewStore(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return val, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: redis delete %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: redis scan %s: %v", domain.ErrStorageUnavailable, prefix, err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
