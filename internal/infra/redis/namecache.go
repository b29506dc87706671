package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/duetrack/internal/lookup"
	"github.com/kislikjeka/duetrack/pkg/logger"
)

const (
	// DefaultTTL bounds how long a resolved display name is reused.
	// Reference data changes rarely; an hour keeps renames visible without
	// hitting the database on every statement-charge description.
	DefaultTTL = time.Hour

	// KeyPrefix is the prefix for lookup cache keys
	KeyPrefix = "lookup:"
)

// NameCache is a read-through cache over a lookup.Provider. Only display
// names pass through here; derived balances are computed from the record
// store on every call and are deliberately never cached.
type NameCache struct {
	client *redis.Client
	next   lookup.Provider
	ttl    time.Duration
	logger *logger.Logger
}

// NewNameCache creates a caching decorator around the given provider
func NewNameCache(client *redis.Client, next lookup.Provider, log *logger.Logger) *NameCache {
	return &NameCache{
		client: client,
		next:   next,
		ttl:    DefaultTTL,
		logger: log.WithField("component", "namecache"),
	}
}

// CategoryName resolves a category name, serving from cache when possible
func (c *NameCache) CategoryName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.resolve(ctx, "category", id, c.next.CategoryName)
}

// ContactName resolves a contact name, serving from cache when possible
func (c *NameCache) ContactName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.resolve(ctx, "contact", id, c.next.ContactName)
}

// CostCenterName resolves a cost center name, serving from cache when possible
func (c *NameCache) CostCenterName(ctx context.Context, id uuid.UUID) (string, error) {
	return c.resolve(ctx, "costcenter", id, c.next.CostCenterName)
}

func (c *NameCache) resolve(
	ctx context.Context,
	dimension string,
	id uuid.UUID,
	fetch func(context.Context, uuid.UUID) (string, error),
) (string, error) {
	key := fmt.Sprintf("%s%s:%s", KeyPrefix, dimension, id)

	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		c.logger.Debug("cache hit", "dimension", dimension, "id", id)
		return val, nil
	}
	if err != redis.Nil {
		// Cache trouble degrades to a direct lookup
		c.logger.Error("cache error", "operation", "get", "key", key, "error", err)
	}

	name, err := fetch(ctx, id)
	if err != nil {
		return "", err
	}

	if setErr := c.client.Set(ctx, key, name, c.ttl).Err(); setErr != nil {
		c.logger.Error("cache error", "operation", "set", "key", key, "error", setErr)
	}

	return name, nil
}

// Invalidate drops a cached name after a rename in the reference tables
func (c *NameCache) Invalidate(ctx context.Context, dimension string, id uuid.UUID) error {
	key := fmt.Sprintf("%s%s:%s", KeyPrefix, dimension, id)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key, err)
	}
	return nil
}
