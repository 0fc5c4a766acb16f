package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

// DefaultLowStockThreshold is used by GetLowStockItems when the caller does not pass one.
const DefaultLowStockThreshold = 10

const (
	MsgItemCreated  = "Item created successfully"
	MsgItemPatched  = "Item updated successfully"
	MsgItemDeleted  = "Item deleted successfully"
	MsgStockUpdated = "Stock updated successfully"
)

type InventoryService struct {
	guard
	repo port.InventoryRepository
}

func NewInventoryService(repo port.InventoryRepository, opts ...Option) *InventoryService {
	return &InventoryService{
		guard: newGuard(opts),
		repo:  repo,
	}
}

func inventoryKey(id string) string {
	return "inventory:" + id
}

// ListItems returns the catalog filtered by category containment. The
// category "all" disables the filter. Limit is applied after sorting.
func (s *InventoryService) ListItems(ctx context.Context, opts domain.ListOptions) ([]domain.InventoryItem, error) {
	q := domain.ItemQuery{SortBy: opts.SortBy, Limit: opts.Limit}
	if opts.Category != "" && opts.Category != domain.CategoryAll {
		q.CategoryContains = opts.Category
	}
	switch q.SortBy {
	case domain.SortByPrice, domain.SortByName:
	default:
		q.SortBy = domain.SortByCreated
	}
	if q.Limit < 0 {
		q.Limit = 0
	}

	return s.query(ctx, q)
}

// GetItem returns nil without error when id is unknown.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.Result, error) {
	if item.Price.IsNegative() {
		return domain.Result{}, ErrNegativePrice
	}
	if item.Stock < 0 {
		return domain.Result{}, ErrNegativeStock
	}

	now := s.timestamp()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Version = 1

	err := s.exclusive(ctx, inventoryKey(item.ID), func() error {
		return s.repo.InsertItem(ctx, item)
	})
	if errors.Is(err, port.ErrDuplicateKey) {
		return domain.Result{}, ErrDuplicateItem
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("insert item: %w", err)
	}

	return domain.OK(MsgItemCreated), nil
}

// UpdateItem merges the supplied fields of patch into the stored item.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Result, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return domain.Result{}, ErrNegativePrice
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return domain.Result{}, ErrNegativeStock
	}

	err := s.mutate(ctx, inventoryKey(id), func() error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}

		patch.Apply(item)
		item.UpdatedAt = s.touch(item.UpdatedAt)

		return s.repo.UpdateItem(ctx, *item)
	})
	if err != nil {
		return domain.Result{}, err
	}

	return domain.OK(MsgItemPatched), nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id string) (domain.Result, error) {
	err := s.mutate(ctx, inventoryKey(id), func() error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		return s.repo.DeleteItem(ctx, *item)
	})
	if err != nil {
		return domain.Result{}, err
	}

	return domain.OK(MsgItemDeleted), nil
}

// UpdateStock overwrites the stock level. Unknown ids are reported before
// negative values.
func (s *InventoryService) UpdateStock(ctx context.Context, id string, stock int) (domain.Result, error) {
	err := s.mutate(ctx, inventoryKey(id), func() error {
		item, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if stock < 0 {
			return ErrNegativeStock
		}

		item.Stock = stock
		item.UpdatedAt = s.touch(item.UpdatedAt)

		return s.repo.UpdateItem(ctx, *item)
	})
	if err != nil {
		return domain.Result{}, err
	}

	return domain.OK(MsgStockUpdated), nil
}

// GetLowStockItems returns items whose stock is at or below threshold,
// lowest stock first.
func (s *InventoryService) GetLowStockItems(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	return s.query(ctx, domain.ItemQuery{MaxStock: &threshold, SortBy: domain.SortByStock})
}

// SearchItems matches query against item names, ignoring case.
func (s *InventoryService) SearchItems(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	return s.query(ctx, domain.ItemQuery{NameContains: query, SortBy: domain.SortByName})
}

func (s *InventoryService) load(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *InventoryService) query(ctx context.Context, q domain.ItemQuery) ([]domain.InventoryItem, error) {
	items, err := s.repo.QueryItems(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	return items, nil
}
