package domain

import "time"

type CartLine struct {
	UserID    string    `json:"-"`
	ItemID    string    `json:"itemId"`
	Quantity  int       `json:"quantity"`
	Version   int       `json:"-"` // optimistic locking
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CartEntry struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CartCount struct {
	TotalItems  int `json:"totalItems"`
	UniqueItems int `json:"uniqueItems"`
}

// Result acknowledges a mutation. Success is false for soft failures such
// as removing an item that is not in the cart.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(message string) Result {
	return Result{Success: true, Message: message}
}

func Soft(message string) Result {
	return Result{Success: false, Message: message}
}
