package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/cart-inventory/internal/port"
)

const (
	// MaxConflictRetries bounds how often a read-decide-write sequence is
	// replayed after losing an optimistic version check.
	MaxConflictRetries = 3

	lockTTL = 5 * time.Second
)

type Option func(*guard)

// WithLocker serializes mutations of the same key through l.
func WithLocker(l port.Locker) Option {
	return func(g *guard) { g.locker = l }
}

func WithClock(now func() time.Time) Option {
	return func(g *guard) { g.now = now }
}

type guard struct {
	locker port.Locker
	now    func() time.Time
}

func newGuard(opts []Option) guard {
	g := guard{now: time.Now}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// timestamp returns the current time at store precision.
func (g guard) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

// touch returns a timestamp strictly after prev.
func (g guard) touch(prev time.Time) time.Time {
	now := g.timestamp()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (g guard) exclusive(ctx context.Context, key string, fn func() error) error {
	if g.locker == nil {
		return fn()
	}

	unlock, err := g.locker.Lock(ctx, key, lockTTL)
	if err != nil {
		return fmt.Errorf("lock %s: %w", key, err)
	}
	defer unlock()

	return fn()
}

// mutate runs fn under the key lock and replays it while it loses the version check.
func (g guard) mutate(ctx context.Context, key string, fn func() error) error {
	return g.exclusive(ctx, key, func() error {
		for attempt := 0; attempt <= MaxConflictRetries; attempt++ {
			err := fn()
			if !errors.Is(err, port.ErrOptimisticLock) {
				return err
			}
		}
		return ErrConcurrentModification
	})
}
