package port

import (
	"context"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

type InventoryRepository interface {
	// GetItem returns nil, nil when the id is unknown
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)

	InsertItem(ctx context.Context, item domain.InventoryItem) error

	// UpdateItem writes every mutable column if item.Version still matches
	UpdateItem(ctx context.Context, item domain.InventoryItem) error

	// DeleteItem removes the row if item.Version still matches
	DeleteItem(ctx context.Context, item domain.InventoryItem) error

	QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.InventoryItem, error)
}
