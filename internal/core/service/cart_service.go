package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

const (
	MsgItemAdded       = "Item added to cart"
	MsgItemNotInCart   = "Item not in cart"
	MsgQuantityLowered = "Item quantity decreased"
	MsgItemRemoved     = "Item removed from cart"
	MsgItemUpdated     = "Cart item updated"
	MsgCartCleared     = "Cart cleared"
	MsgMultipleAdded   = "Multiple items added to cart"
	MsgMultipleRemoved = "Multiple items removed from cart"
	msgMissingFromCart = "not in cart"
)

// CartService owns the cart lines of each user. Every call is scoped to the
// userID resolved by the caller.
type CartService struct {
	guard
	repo port.CartRepository
}

func NewCartService(repo port.CartRepository, opts ...Option) *CartService {
	return &CartService{
		guard: newGuard(opts),
		repo:  repo,
	}
}

func cartKey(userID, itemID string) string {
	return fmt.Sprintf("cart:%s:%s", userID, itemID)
}

func (s *CartService) AddItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	err := s.exclusive(ctx, cartKey(userID, itemID), func() error {
		return s.repo.UpsertLine(ctx, userID, itemID, quantity, s.timestamp())
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("upsert line: %w", err)
	}

	return domain.OK(MsgItemAdded), nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	var result domain.Result
	err := s.mutate(ctx, cartKey(userID, itemID), func() error {
		line, err := s.repo.GetLine(ctx, userID, itemID)
		if err != nil {
			return fmt.Errorf("get line: %w", err)
		}
		if line == nil {
			result = domain.Soft(MsgItemNotInCart)
			return nil
		}

		remaining := line.Quantity - quantity
		if remaining > 0 {
			if err := s.repo.UpdateLineQuantity(ctx, *line, remaining, s.touch(line.UpdatedAt)); err != nil {
				return err
			}
			result = domain.OK(MsgQuantityLowered)
			return nil
		}

		if err := s.repo.DeleteLine(ctx, *line); err != nil {
			return err
		}
		result = domain.OK(MsgItemRemoved)
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}

	return result, nil
}

// UpdateItem sets the quantity of an existing line. Zero removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	var result domain.Result
	err := s.mutate(ctx, cartKey(userID, itemID), func() error {
		line, err := s.repo.GetLine(ctx, userID, itemID)
		if err != nil {
			return fmt.Errorf("get line: %w", err)
		}
		if line == nil {
			result = domain.Soft(MsgItemNotInCart)
			return nil
		}

		if quantity == 0 {
			if err := s.repo.DeleteLine(ctx, *line); err != nil {
				return err
			}
			result = domain.OK(MsgItemRemoved)
			return nil
		}

		if err := s.repo.UpdateLineQuantity(ctx, *line, quantity, s.touch(line.UpdatedAt)); err != nil {
			return err
		}
		result = domain.OK(MsgItemUpdated)
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}

	return result, nil
}

func (s *CartService) ViewCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}

	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}

	return lines, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	if _, err := s.repo.DeleteLines(ctx, userID); err != nil {
		return domain.Result{}, fmt.Errorf("delete lines: %w", err)
	}

	return domain.OK(MsgCartCleared), nil
}

func (s *CartService) GetCartItemCount(ctx context.Context, userID string) (domain.CartCount, error) {
	if userID == "" {
		return domain.CartCount{}, ErrMissingUser
	}

	count, err := s.repo.CountLines(ctx, userID)
	if err != nil {
		return domain.CartCount{}, fmt.Errorf("count lines: %w", err)
	}

	return count, nil
}

// AddMultiple adds entries one by one in input order. Entries applied before
// a failing one stay in the cart.
func (s *CartService) AddMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	for i, e := range entries {
		if _, err := s.AddItem(ctx, userID, e.ItemID, e.Quantity); err != nil {
			return domain.Result{}, fmt.Errorf("entry %d (%s): %w", i, e.ItemID, err)
		}
	}

	return domain.OK(MsgMultipleAdded), nil
}

// RemoveMultiple removes entries one by one in input order, with the same
// partial-application behavior as AddMultiple. Entries that were not in the
// cart are listed in the message.
func (s *CartService) RemoveMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	if userID == "" {
		return domain.Result{}, ErrMissingUser
	}

	var missing []string
	for i, e := range entries {
		res, err := s.RemoveItem(ctx, userID, e.ItemID, e.Quantity)
		if err != nil {
			return domain.Result{}, fmt.Errorf("entry %d (%s): %w", i, e.ItemID, err)
		}
		if !res.Success {
			missing = append(missing, e.ItemID)
		}
	}

	if len(missing) > 0 {
		return domain.OK(fmt.Sprintf("%s; %s: %s", MsgMultipleRemoved, msgMissingFromCart, strings.Join(missing, ", "))), nil
	}
	return domain.OK(MsgMultipleRemoved), nil
}
