package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

// fakeCartRepo mirrors the SQL adapters: atomic upsert and version-checked writes.
type fakeCartRepo struct {
	mu        sync.Mutex
	lines     map[string]domain.CartLine
	failOn    map[string]error // itemID -> error returned by UpsertLine
	conflicts int              // number of version checks to lose on purpose
	writes    int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		lines:  make(map[string]domain.CartLine),
		failOn: make(map[string]error),
	}
}

func lineKey(userID, itemID string) string {
	return userID + "\x00" + itemID
}

func (f *fakeCartRepo) GetLine(ctx context.Context, userID, itemID string) (*domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, ok := f.lines[lineKey(userID, itemID)]
	if !ok {
		return nil, nil
	}
	return &line, nil
}

func (f *fakeCartRepo) UpsertLine(ctx context.Context, userID, itemID string, quantity int, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failOn[itemID]; err != nil {
		return err
	}

	f.writes++
	key := lineKey(userID, itemID)
	line, ok := f.lines[key]
	if !ok {
		f.lines[key] = domain.CartLine{
			UserID: userID, ItemID: itemID, Quantity: quantity, Version: 1,
			AddedAt: now, UpdatedAt: now,
		}
		return nil
	}

	line.Quantity += quantity
	line.Version++
	if now.After(line.UpdatedAt) {
		line.UpdatedAt = now
	} else {
		line.UpdatedAt = line.UpdatedAt.Add(time.Microsecond)
	}
	f.lines[key] = line
	return nil
}

func (f *fakeCartRepo) checkVersion(line domain.CartLine) (domain.CartLine, error) {
	if f.conflicts > 0 {
		f.conflicts--
		return domain.CartLine{}, port.ErrOptimisticLock
	}
	stored, ok := f.lines[lineKey(line.UserID, line.ItemID)]
	if !ok || stored.Version != line.Version {
		return domain.CartLine{}, port.ErrOptimisticLock
	}
	return stored, nil
}

func (f *fakeCartRepo) UpdateLineQuantity(ctx context.Context, line domain.CartLine, quantity int, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, err := f.checkVersion(line)
	if err != nil {
		return err
	}

	f.writes++
	stored.Quantity = quantity
	stored.Version++
	stored.UpdatedAt = now
	f.lines[lineKey(line.UserID, line.ItemID)] = stored
	return nil
}

func (f *fakeCartRepo) DeleteLine(ctx context.Context, line domain.CartLine) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.checkVersion(line); err != nil {
		return err
	}

	f.writes++
	delete(f.lines, lineKey(line.UserID, line.ItemID))
	return nil
}

func (f *fakeCartRepo) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.CartLine
	for _, line := range f.lines {
		if line.UserID == userID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (f *fakeCartRepo) DeleteLines(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for key, line := range f.lines {
		if line.UserID == userID {
			delete(f.lines, key)
			n++
		}
	}
	return n, nil
}

func (f *fakeCartRepo) CountLines(ctx context.Context, userID string) (domain.CartCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count domain.CartCount
	for _, line := range f.lines {
		if line.UserID == userID {
			count.TotalItems += line.Quantity
			count.UniqueItems++
		}
	}
	return count, nil
}

type fakeInventoryRepo struct {
	mu        sync.Mutex
	items     map[string]domain.InventoryItem
	conflicts int
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[string]domain.InventoryItem)}
}

func (f *fakeInventoryRepo) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (f *fakeInventoryRepo) InsertItem(ctx context.Context, item domain.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[item.ID]; ok {
		return port.ErrDuplicateKey
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeInventoryRepo) checkVersion(item domain.InventoryItem) error {
	if f.conflicts > 0 {
		f.conflicts--
		return port.ErrOptimisticLock
	}
	stored, ok := f.items[item.ID]
	if !ok || stored.Version != item.Version {
		return port.ErrOptimisticLock
	}
	return nil
}

func (f *fakeInventoryRepo) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkVersion(item); err != nil {
		return err
	}
	item.Version++
	f.items[item.ID] = item
	return nil
}

func (f *fakeInventoryRepo) DeleteItem(ctx context.Context, item domain.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.checkVersion(item); err != nil {
		return err
	}
	delete(f.items, item.ID)
	return nil
}

func (f *fakeInventoryRepo) QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.InventoryItem
	for _, item := range f.items {
		if q.CategoryContains != "" && (item.Category == nil || !strings.Contains(*item.Category, q.CategoryContains)) {
			continue
		}
		if q.NameContains != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(q.NameContains)) {
			continue
		}
		if q.MaxStock != nil && item.Stock > *q.MaxStock {
			continue
		}
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch q.SortBy {
		case domain.SortByPrice:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case domain.SortByName:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case domain.SortByStock:
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

type fakeLocker struct {
	mu   sync.Mutex
	keys []string
	held map[string]*sync.Mutex
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]*sync.Mutex)}
}

func (l *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	m, ok := l.held[key]
	if !ok {
		m = &sync.Mutex{}
		l.held[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// steppingClock returns t, t+1s, t+2s, ... on successive calls.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}
