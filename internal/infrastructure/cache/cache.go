package cache

import (
	"context"
	"time"
)

// Store is the idempotency cache used by the webhook handler. A key
// maps to the serialized terminal result of a successful pipeline run.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
