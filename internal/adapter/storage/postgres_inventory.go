package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

func (p *PostgresAdapter) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := scanItem(p.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory item: %w", err)
	}

	return &item, nil
}

func (p *PostgresAdapter) InsertItem(ctx context.Context, item domain.InventoryItem) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.Name, item.Price, item.Stock, item.Category, item.Description,
		item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if isPostgresDuplicate(err) {
		return port.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}

	return nil
}

func (p *PostgresAdapter) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE inventory_items
		SET name = $1, price = $2, stock = $3, category = $4, description = $5,
			version = version + 1, updated_at = $6
		WHERE id = $7 AND version = $8`,
		item.Name, item.Price, item.Stock, item.Category, item.Description,
		item.UpdatedAt, item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}

	return checkTag(tag)
}

func (p *PostgresAdapter) DeleteItem(ctx context.Context, item domain.InventoryItem) error {
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM inventory_items WHERE id = $1 AND version = $2`,
		item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}

	return checkTag(tag)
}

func (p *PostgresAdapter) QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.InventoryItem, error) {
	query, args := postgresDialect.selectItems(q)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query inventory items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
