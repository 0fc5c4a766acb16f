package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

// InventoryEngine publishes an event after every successful inventory
// mutation. Publish failures are logged and never fail the mutation.
type InventoryEngine struct {
	port.InventoryEngine
	pub       port.EventPublisher
	threshold int
	log       zerolog.Logger
	now       func() time.Time
}

func NewInventoryEngine(next port.InventoryEngine, pub port.EventPublisher, lowStockThreshold int, logger zerolog.Logger) *InventoryEngine {
	return &InventoryEngine{
		InventoryEngine: next,
		pub:             pub,
		threshold:       lowStockThreshold,
		log:             logger,
		now:             time.Now,
	}
}

func (e *InventoryEngine) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.Result, error) {
	res, err := e.InventoryEngine.CreateItem(ctx, item)
	if err == nil && res.Success {
		e.emit(ctx, domain.EventItemCreated, item.ID, &item.Stock)
		e.checkLow(ctx, item.ID, item.Stock)
	}
	return res, err
}

func (e *InventoryEngine) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Result, error) {
	res, err := e.InventoryEngine.UpdateItem(ctx, id, patch)
	if err == nil && res.Success {
		e.emit(ctx, domain.EventItemUpdated, id, patch.Stock)
		if patch.Stock != nil {
			e.checkLow(ctx, id, *patch.Stock)
		}
	}
	return res, err
}

func (e *InventoryEngine) DeleteItem(ctx context.Context, id string) (domain.Result, error) {
	res, err := e.InventoryEngine.DeleteItem(ctx, id)
	if err == nil && res.Success {
		e.emit(ctx, domain.EventItemDeleted, id, nil)
	}
	return res, err
}

func (e *InventoryEngine) UpdateStock(ctx context.Context, id string, stock int) (domain.Result, error) {
	res, err := e.InventoryEngine.UpdateStock(ctx, id, stock)
	if err == nil && res.Success {
		e.emit(ctx, domain.EventStockUpdated, id, &stock)
		e.checkLow(ctx, id, stock)
	}
	return res, err
}

func (e *InventoryEngine) checkLow(ctx context.Context, id string, stock int) {
	if stock <= e.threshold {
		e.emit(ctx, domain.EventStockLow, id, &stock)
	}
}

func (e *InventoryEngine) emit(ctx context.Context, typ domain.EventType, itemID string, stock *int) {
	event := domain.InventoryEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		ItemID:     itemID,
		Stock:      stock,
		OccurredAt: e.now().UTC(),
	}
	if err := e.pub.Publish(ctx, event); err != nil {
		e.log.Warn().Err(err).Str("event", string(typ)).Str("item_id", itemID).Msg("publish inventory event failed")
	}
}
