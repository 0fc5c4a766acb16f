package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/cart-inventory/internal/port"
)

// ErrOptimisticLock is returned when a version-checked write matched no row.
var ErrOptimisticLock = port.ErrOptimisticLock

var (
	//go:embed schema/mysql.sql
	mysqlSchema string

	//go:embed schema/postgres.sql
	postgresSchema string
)

func statements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureMySQLSchema creates the tables if they do not exist.
func EnsureMySQLSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements(mysqlSchema) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply mysql schema: %w", err)
		}
	}
	return nil
}

// EnsurePostgresSchema creates the tables and indexes if they do not exist.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range statements(postgresSchema) {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply postgres schema: %w", err)
		}
	}
	return nil
}
