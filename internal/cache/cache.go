// Package cache stores short-lived upstream responses keyed by request.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Noop never stores anything. Every Get is a miss.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (Noop) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }

// Observed wraps c and reports whether each Get hit or missed. Read
// errors other than a miss are not reported.
func Observed(c Cache, observe func(hit bool)) Cache {
	return &observed{Cache: c, observe: observe}
}

type observed struct {
	Cache
	observe func(hit bool)
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := o.Cache.Get(ctx, key)
	switch {
	case err == nil:
		o.observe(true)
	case errors.Is(err, ErrMiss):
		o.observe(false)
	}
	return v, err
}
