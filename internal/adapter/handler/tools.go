package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

type toolDef struct {
	name        string
	description string
	mutating    bool
	// bind decodes the arguments and returns the call ready to run.
	bind func(d *Dispatcher, call Call) (func(ctx context.Context) (any, error), error)
}

// tool binds a typed argument struct to a handler.
func tool[A any](name, description string, mutating bool, fn func(ctx context.Context, d *Dispatcher, userID string, args A) (any, error)) toolDef {
	return toolDef{
		name:        name,
		description: description,
		mutating:    mutating,
		bind: func(d *Dispatcher, call Call) (func(ctx context.Context) (any, error), error) {
			var args A
			if err := d.decode(call.Arguments, &args); err != nil {
				return nil, err
			}
			return func(ctx context.Context) (any, error) {
				return fn(ctx, d, call.UserID, args)
			}, nil
		},
	}
}

type noArgs struct{}

type cartLineArgs struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type setQuantityArgs struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
}

type cartEntriesArgs struct {
	Items []domain.CartEntry `json:"items" validate:"required,min=1,dive"`
}

type listItemsArgs struct {
	Category string `json:"category"`
	SortBy   string `json:"sortBy"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

type itemIDArgs struct {
	ID string `json:"id" validate:"required"`
}

type createItemArgs struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
}

type updateItemArgs struct {
	ID          string           `json:"id" validate:"required"`
	Name        *string          `json:"name" validate:"omitnil,min=1"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
}

type updateStockArgs struct {
	ID    string `json:"id" validate:"required"`
	Stock *int   `json:"stock" validate:"required"`
}

type lowStockArgs struct {
	Threshold *int `json:"threshold"`
}

type searchArgs struct {
	Query string `json:"query" validate:"required"`
}

func toolDefs() []toolDef {
	return []toolDef{
		tool("addToCart", "Add a quantity of an item to the caller's cart", true,
			func(ctx context.Context, d *Dispatcher, userID string, a cartLineArgs) (any, error) {
				return d.cart.AddItem(ctx, userID, a.ItemID, a.Quantity)
			}),
		tool("removeFromCart", "Remove a quantity of an item; the line is deleted when nothing remains", true,
			func(ctx context.Context, d *Dispatcher, userID string, a cartLineArgs) (any, error) {
				return d.cart.RemoveItem(ctx, userID, a.ItemID, a.Quantity)
			}),
		tool("updateCartItem", "Set the quantity of a cart line; 0 removes it", true,
			func(ctx context.Context, d *Dispatcher, userID string, a setQuantityArgs) (any, error) {
				return d.cart.UpdateItem(ctx, userID, a.ItemID, *a.Quantity)
			}),
		tool("viewCart", "List the caller's cart, most recently updated first", false,
			func(ctx context.Context, d *Dispatcher, userID string, _ noArgs) (any, error) {
				return d.cart.ViewCart(ctx, userID)
			}),
		tool("clearCart", "Remove every line from the caller's cart", true,
			func(ctx context.Context, d *Dispatcher, userID string, _ noArgs) (any, error) {
				return d.cart.ClearCart(ctx, userID)
			}),
		tool("getCartItemCount", "Total quantity and distinct line count of the caller's cart", false,
			func(ctx context.Context, d *Dispatcher, userID string, _ noArgs) (any, error) {
				return d.cart.GetCartItemCount(ctx, userID)
			}),
		tool("addMultipleToCart", "Add several items in order; earlier entries stay applied if a later one fails", true,
			func(ctx context.Context, d *Dispatcher, userID string, a cartEntriesArgs) (any, error) {
				return d.cart.AddMultiple(ctx, userID, a.Items)
			}),
		tool("removeMultipleFromCart", "Remove several items in order; earlier entries stay applied if a later one fails", true,
			func(ctx context.Context, d *Dispatcher, userID string, a cartEntriesArgs) (any, error) {
				return d.cart.RemoveMultiple(ctx, userID, a.Items)
			}),

		tool("listItems", "List inventory items with optional category filter, sort (price, name or created; anything else sorts newest first) and limit", false,
			func(ctx context.Context, d *Dispatcher, _ string, a listItemsArgs) (any, error) {
				return d.inventory.ListItems(ctx, domain.ListOptions{
					Category: a.Category,
					SortBy:   domain.SortKey(a.SortBy),
					Limit:    a.Limit,
				})
			}),
		tool("getItem", "Fetch one inventory item by id", false,
			func(ctx context.Context, d *Dispatcher, _ string, a itemIDArgs) (any, error) {
				item, err := d.inventory.GetItem(ctx, a.ID)
				if err != nil {
					return nil, err
				}
				if item == nil {
					return plainText(msgItemNotFound), nil
				}
				return item, nil
			}),
		tool("createItem", "Create an inventory item with a unique id; stock defaults to 0", true,
			func(ctx context.Context, d *Dispatcher, _ string, a createItemArgs) (any, error) {
				stock := 0
				if a.Stock != nil {
					stock = *a.Stock
				}
				return d.inventory.CreateItem(ctx, domain.InventoryItem{
					ID:          a.ID,
					Name:        a.Name,
					Price:       *a.Price,
					Stock:       stock,
					Category:    a.Category,
					Description: a.Description,
				})
			}),
		tool("updateItem", "Update the supplied fields of an inventory item", true,
			func(ctx context.Context, d *Dispatcher, _ string, a updateItemArgs) (any, error) {
				return d.inventory.UpdateItem(ctx, a.ID, domain.ItemPatch{
					Name:        a.Name,
					Price:       a.Price,
					Stock:       a.Stock,
					Category:    a.Category,
					Description: a.Description,
				})
			}),
		tool("deleteItem", "Delete an inventory item", true,
			func(ctx context.Context, d *Dispatcher, _ string, a itemIDArgs) (any, error) {
				return d.inventory.DeleteItem(ctx, a.ID)
			}),
		tool("updateStock", "Set the stock level of an inventory item", true,
			func(ctx context.Context, d *Dispatcher, _ string, a updateStockArgs) (any, error) {
				return d.inventory.UpdateStock(ctx, a.ID, *a.Stock)
			}),
		tool("getLowStockItems", "List items whose stock is at or below the threshold, lowest first", false,
			func(ctx context.Context, d *Dispatcher, _ string, a lowStockArgs) (any, error) {
				threshold := d.lowStockThreshold
				if a.Threshold != nil {
					threshold = *a.Threshold
				}
				return d.inventory.GetLowStockItems(ctx, threshold)
			}),
		tool("searchItems", "Case-insensitive search over item names", false,
			func(ctx context.Context, d *Dispatcher, _ string, a searchArgs) (any, error) {
				return d.inventory.SearchItems(ctx, a.Query)
			}),
	}
}
