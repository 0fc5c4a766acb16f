package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

// MySQLAdapter implements port.CartRepository and port.InventoryRepository.
// The DSN must set parseTime=true.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetLine(ctx context.Context, userID, itemID string) (*domain.CartLine, error) {
	line, err := scanLine(m.db.QueryRowContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_items WHERE user_id = ? AND item_id = ?`, userID, itemID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}

	return &line, nil
}

func (m *MySQLAdapter) UpsertLine(ctx context.Context, userID, itemID string, quantity int, now time.Time) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO cart_items (user_id, item_id, quantity, version, added_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			version = version + 1,
			updated_at = GREATEST(VALUES(updated_at), updated_at + INTERVAL 1 MICROSECOND)`,
		userID, itemID, quantity, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) UpdateLineQuantity(ctx context.Context, line domain.CartLine, quantity int, now time.Time) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = ?, version = version + 1, updated_at = ?
		WHERE user_id = ? AND item_id = ? AND version = ?`,
		quantity, now, line.UserID, line.ItemID, line.Version,
	)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}

	return checkAffected(result)
}

func (m *MySQLAdapter) DeleteLine(ctx context.Context, line domain.CartLine) error {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = ? AND item_id = ? AND version = ?`,
		line.UserID, line.ItemID, line.Version,
	)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	return checkAffected(result)
}

func (m *MySQLAdapter) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_items WHERE user_id = ?
		ORDER BY updated_at DESC, item_id ASC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (m *MySQLAdapter) DeleteLines(ctx context.Context, userID string) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete cart lines: %w", err)
	}

	n, _ := result.RowsAffected()
	return n, nil
}

func (m *MySQLAdapter) CountLines(ctx context.Context, userID string) (domain.CartCount, error) {
	var count domain.CartCount
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0), COUNT(*)
		FROM cart_items WHERE user_id = ?`, userID,
	).Scan(&count.TotalItems, &count.UniqueItems)
	if err != nil {
		return domain.CartCount{}, fmt.Errorf("count cart lines: %w", err)
	}

	return count, nil
}

func checkAffected(result sql.Result) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func isMySQLDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
