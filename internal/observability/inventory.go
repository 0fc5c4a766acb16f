package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

type InventoryEngine struct {
	next port.InventoryEngine
	in   *Instruments
}

func NewInventoryEngine(next port.InventoryEngine, in *Instruments) *InventoryEngine {
	return &InventoryEngine{next: next, in: in}
}

func (e *InventoryEngine) ListItems(ctx context.Context, opts domain.ListOptions) ([]domain.InventoryItem, error) {
	ctx, c := e.in.begin(ctx, "listItems",
		attribute.String("category", opts.Category), attribute.String("sort_by", string(opts.SortBy)))
	items, err := e.next.ListItems(ctx, opts)
	c.end(ctx, err, false)
	return items, err
}

func (e *InventoryEngine) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	ctx, c := e.in.begin(ctx, "getItem", itemAttr(id))
	item, err := e.next.GetItem(ctx, id)
	c.end(ctx, err, err == nil && item == nil)
	return item, err
}

func (e *InventoryEngine) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "createItem", itemAttr(item.ID))
	res, err := e.next.CreateItem(ctx, item)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *InventoryEngine) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "updateItem", itemAttr(id))
	res, err := e.next.UpdateItem(ctx, id, patch)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *InventoryEngine) DeleteItem(ctx context.Context, id string) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "deleteItem", itemAttr(id))
	res, err := e.next.DeleteItem(ctx, id)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *InventoryEngine) UpdateStock(ctx context.Context, id string, stock int) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "updateStock", itemAttr(id), attribute.Int("stock", stock))
	res, err := e.next.UpdateStock(ctx, id, stock)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *InventoryEngine) GetLowStockItems(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	ctx, c := e.in.begin(ctx, "getLowStockItems", attribute.Int("threshold", threshold))
	items, err := e.next.GetLowStockItems(ctx, threshold)
	c.end(ctx, err, false)
	return items, err
}

func (e *InventoryEngine) SearchItems(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	ctx, c := e.in.begin(ctx, "searchItems", attribute.String("query", query))
	items, err := e.next.SearchItems(ctx, query)
	c.end(ctx, err, false)
	return items, err
}
