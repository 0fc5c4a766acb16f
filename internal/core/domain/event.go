package domain

import "time"

type EventType string

const (
	EventItemCreated  EventType = "inventory.item.created"
	EventItemUpdated  EventType = "inventory.item.updated"
	EventItemDeleted  EventType = "inventory.item.deleted"
	EventStockUpdated EventType = "inventory.stock.updated"
	EventStockLow     EventType = "inventory.stock.low"
)

type InventoryEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ItemID     string    `json:"itemId"`
	Stock      *int      `json:"stock,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
