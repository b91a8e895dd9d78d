// Package cache keeps assembled page payloads between admin writes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/aTrapDeer/portfolio-backend/internal/logger"
)

type Cache interface {
	// Get decodes the cached value for key into dst and reports a hit.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Flush drops every entry. Called after admin writes.
	Flush(ctx context.Context) error
}

// New picks the backend named by driver ("memory" or "redis").
func New(driver, redisAddr string, ttl time.Duration, log *logger.Logger) (Cache, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemory(ttl), nil
	case "redis":
		return NewRedis(redisAddr, ttl, log)
	}
	return nil, fmt.Errorf("cache: unsupported driver %q", driver)
}

// GetOrLoad returns the cached value for key, or calls load and caches the
// result. Cache errors are not fatal: the loader result is still returned.
func GetOrLoad[T any](ctx context.Context, c Cache, log *logger.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if c != nil {
		hit, err := c.Get(ctx, key, &out)
		if err == nil && hit {
			return out, nil
		}
		if err != nil && log != nil {
			log.Warn("cache read failed", "key", key, "error", err)
		}
	}

	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if c != nil {
		if err := c.Set(ctx, key, out); err != nil && log != nil {
			log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

type memory struct {
	c *gocache.Cache
}

// NewMemory is an in-process cache. Values are stored JSON encoded so
// callers never share mutable state with the cache.
func NewMemory(ttl time.Duration) Cache {
	return &memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *memory) Get(_ context.Context, key string, dst any) (bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return false, nil
	}
	raw, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cache: invalid entry for %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memory) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.c.Set(key, raw, gocache.DefaultExpiration)
	return nil
}

func (m *memory) Flush(context.Context) error {
	m.c.Flush()
	return nil
}
