package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

// CartEngine logs, traces and measures every call to the wrapped engine.
type CartEngine struct {
	next port.CartEngine
	in   *Instruments
}

func NewCartEngine(next port.CartEngine, in *Instruments) *CartEngine {
	return &CartEngine{next: next, in: in}
}

func (e *CartEngine) AddItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "addItem", userAttr(userID), itemAttr(itemID))
	res, err := e.next.AddItem(ctx, userID, itemID, quantity)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *CartEngine) RemoveItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "removeItem", userAttr(userID), itemAttr(itemID))
	res, err := e.next.RemoveItem(ctx, userID, itemID, quantity)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *CartEngine) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "updateItem", userAttr(userID), itemAttr(itemID))
	res, err := e.next.UpdateItem(ctx, userID, itemID, quantity)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *CartEngine) ViewCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	ctx, c := e.in.begin(ctx, "viewCart", userAttr(userID))
	lines, err := e.next.ViewCart(ctx, userID)
	c.end(ctx, err, false)
	return lines, err
}

func (e *CartEngine) ClearCart(ctx context.Context, userID string) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "clearCart", userAttr(userID))
	res, err := e.next.ClearCart(ctx, userID)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *CartEngine) GetCartItemCount(ctx context.Context, userID string) (domain.CartCount, error) {
	ctx, c := e.in.begin(ctx, "getCartItemCount", userAttr(userID))
	count, err := e.next.GetCartItemCount(ctx, userID)
	c.end(ctx, err, false)
	return count, err
}

func (e *CartEngine) AddMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "addMultiple", userAttr(userID), attribute.Int("entries", len(entries)))
	res, err := e.next.AddMultiple(ctx, userID, entries)
	c.end(ctx, err, !res.Success)
	return res, err
}

func (e *CartEngine) RemoveMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	ctx, c := e.in.begin(ctx, "removeMultiple", userAttr(userID), attribute.Int("entries", len(entries)))
	res, err := e.next.RemoveMultiple(ctx, userID, entries)
	c.end(ctx, err, !res.Success)
	return res, err
}
