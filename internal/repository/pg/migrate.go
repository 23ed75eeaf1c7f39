package pg

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the schema and stored functions. Safe to run repeatedly.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	// no arguments: pgx sends this over the simple protocol, which accepts
	// multiple statements
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
