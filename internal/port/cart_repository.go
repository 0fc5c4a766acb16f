package port

import (
	"context"
	"time"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

type CartRepository interface {
	// GetLine returns nil, nil when the user has no line for the item
	GetLine(ctx context.Context, userID, itemID string) (*domain.CartLine, error)

	// UpsertLine inserts the line or atomically adds quantity to the existing one
	UpsertLine(ctx context.Context, userID, itemID string, quantity int, now time.Time) error

	// UpdateLineQuantity sets an absolute quantity if line.Version still matches
	UpdateLineQuantity(ctx context.Context, line domain.CartLine, quantity int, now time.Time) error

	// DeleteLine removes the line if line.Version still matches
	DeleteLine(ctx context.Context, line domain.CartLine) error

	// ListLines returns the user's lines, most recently updated first
	ListLines(ctx context.Context, userID string) ([]domain.CartLine, error)

	DeleteLines(ctx context.Context, userID string) (int64, error)

	CountLines(ctx context.Context, userID string) (domain.CartCount, error)
}
