package storage

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

// The contract tests run against every SQL adapter. Each test works on fresh
// random ids so that runs can share a database.

func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func testCartRepository(t *testing.T, repo port.CartRepository) {
	t.Run("upsert accumulates and bumps updated_at", func(t *testing.T) {
		ctx := context.Background()
		user := gofakeit.UUID()
		now := storeNow()

		require.NoError(t, repo.UpsertLine(ctx, user, "sku1", 3, now))
		require.NoError(t, repo.UpsertLine(ctx, user, "sku1", 2, now))

		line, err := repo.GetLine(ctx, user, "sku1")
		require.NoError(t, err)
		require.NotNil(t, line)
		assert.Equal(t, 5, line.Quantity)
		assert.Equal(t, 2, line.Version)
		assert.True(t, line.AddedAt.Equal(now))
		assert.True(t, line.UpdatedAt.After(line.AddedAt))
	})

	t.Run("absent line is nil", func(t *testing.T) {
		line, err := repo.GetLine(context.Background(), gofakeit.UUID(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, line)
	})

	t.Run("version-checked writes", func(t *testing.T) {
		ctx := context.Background()
		user := gofakeit.UUID()
		require.NoError(t, repo.UpsertLine(ctx, user, "sku", 4, storeNow()))

		line, err := repo.GetLine(ctx, user, "sku")
		require.NoError(t, err)

		require.NoError(t, repo.UpdateLineQuantity(ctx, *line, 9, storeNow()))
		assert.ErrorIs(t, repo.UpdateLineQuantity(ctx, *line, 1, storeNow()), ErrOptimisticLock)
		assert.ErrorIs(t, repo.DeleteLine(ctx, *line), ErrOptimisticLock)

		fresh, err := repo.GetLine(ctx, user, "sku")
		require.NoError(t, err)
		assert.Equal(t, 9, fresh.Quantity)

		require.NoError(t, repo.DeleteLine(ctx, *fresh))
		gone, err := repo.GetLine(ctx, user, "sku")
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("list count and clear", func(t *testing.T) {
		ctx := context.Background()
		user, other := gofakeit.UUID(), gofakeit.UUID()
		base := storeNow()

		require.NoError(t, repo.UpsertLine(ctx, user, "a", 1, base))
		require.NoError(t, repo.UpsertLine(ctx, user, "b", 2, base.Add(time.Second)))
		require.NoError(t, repo.UpsertLine(ctx, user, "c", 3, base.Add(2*time.Second)))
		require.NoError(t, repo.UpsertLine(ctx, other, "a", 7, base))

		lines, err := repo.ListLines(ctx, user)
		require.NoError(t, err)
		var got []string
		for _, l := range lines {
			got = append(got, l.ItemID)
		}
		assert.Equal(t, []string{"c", "b", "a"}, got)

		count, err := repo.CountLines(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, domain.CartCount{TotalItems: 6, UniqueItems: 3}, count)

		n, err := repo.DeleteLines(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		count, err = repo.CountLines(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, domain.CartCount{}, count)

		count, err = repo.CountLines(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 7, count.TotalItems)
	})

	t.Run("concurrent upserts are not lost", func(t *testing.T) {
		ctx := context.Background()
		user := gofakeit.UUID()
		workers := 30
		require.NoError(t, repo.UpsertLine(ctx, user, "hot", 1, storeNow()))

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, repo.UpsertLine(ctx, user, "hot", 1, storeNow()))
			}()
		}
		wg.Wait()

		line, err := repo.GetLine(ctx, user, "hot")
		require.NoError(t, err)
		require.NotNil(t, line)
		assert.Equal(t, workers+1, line.Quantity)
	})
}

func randomItem(category string) domain.InventoryItem {
	now := storeNow()
	item := domain.InventoryItem{
		ID:        gofakeit.UUID(),
		Name:      gofakeit.ProductName(),
		Price:     decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
		Stock:     gofakeit.Number(0, 50),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if category != "" {
		item.Category = &category
	}
	return item
}

func assertItem(t *testing.T, expected, actual domain.InventoryItem) {
	t.Helper()

	opts := cmp.Options{
		cmp.Comparer(func(x, y decimal.Decimal) bool { return x.Equal(y) }),
		cmpopts.EquateApproxTime(0),
	}
	assert.Empty(t, cmp.Diff(expected, actual, opts))
}

func testInventoryRepository(t *testing.T, repo port.InventoryRepository) {
	t.Run("insert get and duplicate", func(t *testing.T) {
		ctx := context.Background()
		item := randomItem("tools")
		desc := gofakeit.Sentence(5)
		item.Description = &desc

		require.NoError(t, repo.InsertItem(ctx, item))

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assertItem(t, item, *got)

		dup := randomItem("")
		dup.ID = item.ID
		assert.ErrorIs(t, repo.InsertItem(ctx, dup), port.ErrDuplicateKey)

		again, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assertItem(t, item, *again)
	})

	t.Run("absent item is nil", func(t *testing.T) {
		got, err := repo.GetItem(context.Background(), gofakeit.UUID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("version-checked update and delete", func(t *testing.T) {
		ctx := context.Background()
		item := randomItem("")
		require.NoError(t, repo.InsertItem(ctx, item))

		changed := item
		changed.Stock = 42
		changed.UpdatedAt = item.UpdatedAt.Add(time.Microsecond)
		require.NoError(t, repo.UpdateItem(ctx, changed))
		assert.ErrorIs(t, repo.UpdateItem(ctx, changed), ErrOptimisticLock)
		assert.ErrorIs(t, repo.DeleteItem(ctx, item), ErrOptimisticLock)

		got, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 42, got.Stock)
		assert.Equal(t, 2, got.Version)

		require.NoError(t, repo.DeleteItem(ctx, *got))
		gone, err := repo.GetItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("query filters and ordering", func(t *testing.T) {
		ctx := context.Background()
		run := strings.ReplaceAll(gofakeit.UUID(), "-", "")

		mk := func(name string, price int64, stock int, category string) domain.InventoryItem {
			item := randomItem(category)
			item.Name = name
			item.Price = decimal.NewFromInt(price)
			item.Stock = stock
			return item
		}
		items := []domain.InventoryItem{
			mk("Banana "+run, 30, 3, run+"-fruit"),
			mk("apple "+run, 10, 10, run+"-fruit-red"),
			mk("Hammer "+run, 20, 11, run+"-Tools"),
		}
		for _, item := range items {
			require.NoError(t, repo.InsertItem(ctx, item))
		}
		names := func(q domain.ItemQuery) []string {
			got, err := repo.QueryItems(ctx, q)
			require.NoError(t, err)
			var out []string
			for _, item := range got {
				out = append(out, strings.Fields(item.Name)[0])
			}
			return out
		}

		assert.Equal(t, []string{"apple", "Banana"},
			names(domain.ItemQuery{CategoryContains: run + "-fruit", SortBy: domain.SortByPrice}))
		assert.Empty(t,
			names(domain.ItemQuery{CategoryContains: run + "-tools"}))
		assert.Equal(t, []string{"apple", "Hammer", "Banana"},
			names(domain.ItemQuery{CategoryContains: run, SortBy: domain.SortByPrice}))
		assert.Equal(t, []string{"Banana", "Hammer", "apple"},
			names(domain.ItemQuery{NameContains: strings.ToUpper(run), SortBy: domain.SortByName}))
		assert.Equal(t, []string{"Banana", "apple"},
			names(domain.ItemQuery{CategoryContains: run, MaxStock: intPtr(10), SortBy: domain.SortByStock}))
		assert.Equal(t, []string{"apple"},
			names(domain.ItemQuery{CategoryContains: run, SortBy: domain.SortByPrice, Limit: 1}))
	})
}

func intPtr(n int) *int { return &n }
