package worker

import (
	"context"
	"log/slog"

	"dompet/internal/amqp"
	"dompet/internal/core"
)

// Invalidator forgets whatever is cached under a key.
type Invalidator interface {
	Invalidate(key string)
}

// CacheInvalidator drops a user's cached read model whenever one of the
// user's collections changes, locally or on another instance.
type CacheInvalidator struct {
	cache Invalidator
}

func NewCacheInvalidator(cache Invalidator) *CacheInvalidator {
	return &CacheInvalidator{cache: cache}
}

// HandleChange is an amqp consumer handler.
func (c *CacheInvalidator) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	return c.Notify(ctx, msg.Event())
}

// Notify lets the invalidator sit in a services.Notifier chain.
func (c *CacheInvalidator) Notify(ctx context.Context, ev core.ChangeEvent) error {
	if ev.UserID == "" {
		return nil
	}
	c.cache.Invalidate(ev.UserID)
	slog.DebugContext(ctx, "Invalidated cached snapshot", "user_id", ev.UserID, "entity", ev.Entity)
	return nil
}
