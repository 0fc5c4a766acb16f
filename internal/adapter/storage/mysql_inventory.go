package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/cart-inventory/internal/core/domain"
	"github.com/rl1809/cart-inventory/internal/port"
)

func (m *MySQLAdapter) GetItem(ctx context.Context, id string) (*domain.InventoryItem, error) {
	item, err := scanItem(m.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory item: %w", err)
	}

	return &item, nil
}

func (m *MySQLAdapter) InsertItem(ctx context.Context, item domain.InventoryItem) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Price, item.Stock, item.Category, item.Description,
		item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if isMySQLDuplicate(err) {
		return port.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("insert inventory item: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = ?, price = ?, stock = ?, category = ?, description = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		item.Name, item.Price, item.Stock, item.Category, item.Description,
		item.UpdatedAt, item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}

	return checkAffected(result)
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, item domain.InventoryItem) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM inventory_items WHERE id = ? AND version = ?`,
		item.ID, item.Version,
	)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}

	return checkAffected(result)
}

func (m *MySQLAdapter) QueryItems(ctx context.Context, q domain.ItemQuery) ([]domain.InventoryItem, error) {
	query, args := mysqlDialect.selectItems(q)

	rows, err := m.db.QueryContext(ctx, query, args...)
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
