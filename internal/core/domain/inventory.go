package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    *string         `json:"category,omitempty"`
	Description *string         `json:"description,omitempty"`
	Version     int             `json:"-"` // optimistic locking
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ItemPatch carries the fields of a partial update. Nil fields are left untouched.
type ItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Description *string
}

func (p ItemPatch) Apply(item *InventoryItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Stock != nil {
		item.Stock = *p.Stock
	}
	if p.Category != nil {
		item.Category = p.Category
	}
	if p.Description != nil {
		item.Description = p.Description
	}
}

type SortKey string

const (
	SortByCreated SortKey = "created"
	SortByPrice   SortKey = "price"
	SortByName    SortKey = "name"
	SortByStock   SortKey = "stock"
)

// CategoryAll disables the category filter of ListOptions.
const CategoryAll = "all"

type ListOptions struct {
	Category string
	SortBy   SortKey
	Limit    int
}

// ItemQuery is the predicate-filtered select understood by inventory repositories.
type ItemQuery struct {
	CategoryContains string // case-sensitive containment
	NameContains     string // case-insensitive containment
	MaxStock         *int
	SortBy           SortKey
	Limit            int
}
