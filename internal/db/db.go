// Package db is the key-value layer under the esb response cache.
// Drivers live in the redis (rueidis) and goredis subpackages.
package db

import (
	"context"
	"fmt"
	"time"
)

// Store is the key-value backend of the response cache.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// readyInterval is the pause between pings in WaitReady.
const readyInterval = 100 * time.Millisecond

// WaitReady pings p until it answers or timeout expires. The client uses it
// so a misconfigured cache fails at startup instead of on every search.
func WaitReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()

	var last error
	for {
		select {
		case <-ctx.Done():
			if last != nil {
				return fmt.Errorf("cache not ready: %w (last ping: %v)", ctx.Err(), last)
			}
			return fmt.Errorf("cache not ready: %w", ctx.Err())
		case <-ticker.C:
			if last = p.Ping(ctx); last == nil {
				return nil
			}
		}
	}
}
