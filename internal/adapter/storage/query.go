package storage

import (
	"fmt"
	"strings"

	"github.com/rl1809/cart-inventory/internal/core/domain"
)

const itemColumns = `id, name, price, stock, category, description, version, created_at, updated_at`

// dialect holds the SQL fragments that differ between MySQL and Postgres.
type dialect struct {
	bind          func(n int) string
	contains      string // format: haystack column, needle placeholder
	containsFold  string
	nameOrderExpr string
}

var mysqlDialect = dialect{
	bind:          func(int) string { return "?" },
	contains:      "LOCATE(%[2]s, %[1]s) > 0",
	containsFold:  "LOCATE(LOWER(%[2]s), LOWER(%[1]s)) > 0",
	nameOrderExpr: "name",
}

var postgresDialect = dialect{
	bind:          func(n int) string { return fmt.Sprintf("$%d", n) },
	contains:      "strpos(%[1]s, %[2]s) > 0",
	containsFold:  "strpos(lower(%[1]s), lower(%[2]s)) > 0",
	nameOrderExpr: `name COLLATE "C"`,
}

func (d dialect) orderBy(key domain.SortKey) string {
	switch key {
	case domain.SortByPrice:
		return "price ASC, id ASC"
	case domain.SortByName:
		return d.nameOrderExpr + " ASC, id ASC"
	case domain.SortByStock:
		return "stock ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

// selectItems renders q as a single SELECT over inventory_items.
func (d dialect) selectItems(q domain.ItemQuery) (string, []any) {
	var (
		where []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return d.bind(len(args))
	}

	if q.CategoryContains != "" {
		where = append(where, fmt.Sprintf(d.contains, "category", next(q.CategoryContains)))
	}
	if q.NameContains != "" {
		where = append(where, fmt.Sprintf(d.containsFold, "name", next(q.NameContains)))
	}
	if q.MaxStock != nil {
		where = append(where, "stock <= "+next(*q.MaxStock))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + itemColumns + " FROM inventory_items")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY " + d.orderBy(q.SortBy))
	if q.Limit > 0 {
		sb.WriteString(" LIMIT " + next(q.Limit))
	}

	return sb.String(), args
}

// rowScanner is satisfied by *sql.Row, *sql.Rows, pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(
		&item.ID, &item.Name, &item.Price, &item.Stock, &item.Category, &item.Description,
		&item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, err
}

const lineColumns = `user_id, item_id, quantity, version, added_at, updated_at`

func scanLine(row rowScanner) (domain.CartLine, error) {
	var line domain.CartLine
	err := row.Scan(&line.UserID, &line.ItemID, &line.Quantity, &line.Version, &line.AddedAt, &line.UpdatedAt)
	line.AddedAt = line.AddedAt.UTC()
	line.UpdatedAt = line.UpdatedAt.UTC()
	return line, err
}
