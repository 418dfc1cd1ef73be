package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-api/internal/core/domain"
	"github.com/recordhub/records-api/internal/core/ports"
	"github.com/recordhub/records-api/pkg/metrics"
)

// idempotentCreate replays or records creations keyed by a client-supplied
// Idempotency-Key. A nil store disables it. Store failures never block a
// creation; they are logged and the request proceeds.
type idempotentCreate[T any] struct {
	store ports.IdempotencyStore
	kind  domain.Kind
	find  func(ctx context.Context, id int64) (*T, error)
	log   zerolog.Logger
}

func idempotencyScope(kind domain.Kind, ownerID int64) string {
	return fmt.Sprintf("%s:%d", kind, ownerID)
}

// replay returns the record created earlier under key by ownerID, or nil.
func (c idempotentCreate[T]) replay(ctx context.Context, ownerID int64, key string) *T {
	if c.store == nil || key == "" {
		return nil
	}
	id, ok, err := c.store.Lookup(ctx, idempotencyScope(c.kind, ownerID), key)
	if err != nil {
		c.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !ok {
		return nil
	}
	existing, err := c.find(ctx, id)
	if err != nil {
		return nil
	}
	metrics.IdempotentReplaysTotal.WithLabelValues(string(c.kind)).Inc()
	c.log.Info().Str("idempotency_key", key).Int64("record_id", id).Msg("idempotent replay")
	return existing
}

// remember ties key to the record just created.
func (c idempotentCreate[T]) remember(ctx context.Context, ownerID int64, key string, id int64) {
	if c.store == nil || key == "" {
		return
	}
	if err := c.store.Remember(ctx, idempotencyScope(c.kind, ownerID), key, id); err != nil {
		c.log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotency key")
	}
}
