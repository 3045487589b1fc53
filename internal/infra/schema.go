package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"linguachat/internal/sqlinline"
)

// EnsureSchema applies the inline DDL. Safe to call on every start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range sqlinline.All() {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
