package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

const pgUniqueViolation = "23505"

// PostgresAdapter implements port.CartRepository and port.InventoryRepository on pgx.
type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

func (p *PostgresAdapter) GetLine(ctx context.Context, userID, itemID string) (*domain.CartLine, error) {
	line, err := scanLine(p.pool.QueryRow(ctx, `
		SELECT `+lineColumns+`
		FROM cart_items WHERE user_id = $1 AND item_id = $2`, userID, itemID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}

	return &line, nil
}

func (p *PostgresAdapter) UpsertLine(ctx context.Context, userID, itemID string, quantity int, now time.Time) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO cart_items (user_id, item_id, quantity, version, added_at, updated_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			version = cart_items.version + 1,
			updated_at = GREATEST(EXCLUDED.updated_at, cart_items.updated_at + INTERVAL '1 microsecond')`,
		userID, itemID, quantity, now,
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}

	return nil
}

func (p *PostgresAdapter) UpdateLineQuantity(ctx context.Context, line domain.CartLine, quantity int, now time.Time) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE cart_items
		SET quantity = $1, version = version + 1, updated_at = $2
		WHERE user_id = $3 AND item_id = $4 AND version = $5`,
		quantity, now, line.UserID, line.ItemID, line.Version,
	)
	if err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}

	return checkTag(tag)
}

func (p *PostgresAdapter) DeleteLine(ctx context.Context, line domain.CartLine) error {
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND item_id = $2 AND version = $3`,
		line.UserID, line.ItemID, line.Version,
	)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}

	return checkTag(tag)
}

func (p *PostgresAdapter) ListLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+lineColumns+`
		FROM cart_items WHERE user_id = $1
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

func (p *PostgresAdapter) DeleteLines(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete cart lines: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresAdapter) CountLines(ctx context.Context, userID string) (domain.CartCount, error) {
	var count domain.CartCount
	err := p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0), COUNT(*)
		FROM cart_items WHERE user_id = $1`, userID,
	).Scan(&count.TotalItems, &count.UniqueItems)
	if err != nil {
		return domain.CartCount{}, fmt.Errorf("count cart lines: %w", err)
	}

	return count, nil
}

func checkTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrOptimisticLock
	}
	return nil
}

func isPostgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
