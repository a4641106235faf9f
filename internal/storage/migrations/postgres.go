package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunPostgresMigrations applies the embedded Postgres schema files to
// the database named in the DSN.
func RunPostgresMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect for migrations: %w", err)
	}
	defer pool.Close()

	names, contents, err := loadMigrations("postgres")
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := pool.Exec(ctx, contents[name]); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
