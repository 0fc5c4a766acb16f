package port

import (
	"context"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

// CartEngine is implemented by service.CartService and its decorators.
type CartEngine interface {
	AddItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error)
	RemoveItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error)
	ViewCart(ctx context.Context, userID string) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, userID string) (domain.Result, error)
	GetCartItemCount(ctx context.Context, userID string) (domain.CartCount, error)
	AddMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error)
	RemoveMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error)
}

// InventoryEngine is implemented by service.InventoryService and its decorators.
type InventoryEngine interface {
	ListItems(ctx context.Context, opts domain.ListOptions) ([]domain.InventoryItem, error)
	GetItem(ctx context.Context, id string) (*domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (domain.Result, error)
	UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Result, error)
	DeleteItem(ctx context.Context, id string) (domain.Result, error)
	UpdateStock(ctx context.Context, id string, stock int) (domain.Result, error)
	GetLowStockItems(ctx context.Context, threshold int) ([]domain.InventoryItem, error)
	SearchItems(ctx context.Context, query string) ([]domain.InventoryItem, error)
}
