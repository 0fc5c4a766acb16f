package port

import (
	"context"
	"time"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

type IdempotencyStore interface {
	// Claim records key, returns false if it was already claimed
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a failed call can be resubmitted
	Release(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.InventoryEvent) error
}
