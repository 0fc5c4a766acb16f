package handler

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

type mockCart struct {
	mock.Mock
}

func (m *mockCart) AddItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockCart) RemoveItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockCart) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (domain.Result, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockCart) ViewCart(ctx context.Context, userID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]domain.CartLine)
	return lines, args.Error(1)
}

func (m *mockCart) ClearCart(ctx context.Context, userID string) (domain.Result, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockCart) GetCartItemCount(ctx context.Context, userID string) (domain.CartCount, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.CartCount), args.Error(1)
}

func (m *mockCart) AddMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	args := m.Called(ctx, userID, entries)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockCart) RemoveMultiple(ctx context.Context, userID string, entries []domain.CartEntry) (domain.Result, error) {
	args := m.Called(ctx, userID, entries)
	return args.Get(0).(domain.Result), args.Error(1)
}

type mockInventory struct {
	mock.Mock
}

func (m *mockInventory) ListItems(ctx context.Context, opts domain.ListOptions) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, opts)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

func (m *mockInventory) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*domain.InventoryItem)
	return item, args.Error(1)
}

func (m *mockInventory) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.Result, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockInventory) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (domain.Result, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockInventory) DeleteItem(ctx context.Context, id string) (domain.Result, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockInventory) UpdateStock(ctx context.Context, id string, stock int) (domain.Result, error) {
	args := m.Called(ctx, id, stock)
	return args.Get(0).(domain.Result), args.Error(1)
}

func (m *mockInventory) GetLowStockItems(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, threshold)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

func (m *mockInventory) SearchItems(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	args := m.Called(ctx, query)
	items, _ := args.Get(0).([]domain.InventoryItem)
	return items, args.Error(1)
}

type memIdempotency struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *memIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *memIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}
