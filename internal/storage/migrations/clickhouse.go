package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "github.com/shinobu1729/backtest-univ3/internal/storage/clickhouse"
)

// RunClickHouseMigrations creates the database named in the DSN if
// needed and applies the embedded ClickHouse schema files to it.
func RunClickHouseMigrations(ctx context.Context, dsn string) error {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return err
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "default")
	if err != nil {
		return fmt.Errorf("connect for migrations: %w", err)
	}
	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		admin.Close()
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	admin.Close()

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return fmt.Errorf("connect to %s for migrations: %w", dbName, err)
	}
	defer conn.Close()

	names, contents, err := loadMigrations("clickhouse")
	if err != nil {
		return err
	}
	for _, name := range names {
		statements, err := splitStatements(contents[name])
		if err != nil {
			return fmt.Errorf("parse migration %s: %w", name, err)
		}
		for _, stmt := range statements {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
		}
	}
	return nil
}

// databaseFromDSN extracts the database name from a ClickHouse DSN,
// defaulting to "default" when the path is empty.
func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		db = "default"
	}
	return db, nil
}

// splitStatements splits a migration file on semicolons. The ClickHouse
// driver executes one statement at a time, unlike pgx.
func splitStatements(sql string) ([]string, error) {
	if err := validateNoSemicolonInStrings(sql); err != nil {
		return nil, err
	}
	var out []string
	for _, part := range strings.Split(sql, ";") {
		stmt := strings.TrimSpace(part)
		if stmt != "" {
			out = append(out, stmt)
		}
	}
	return out, nil
}

// validateNoSemicolonInStrings rejects files with semicolons inside
// quoted literals, which the naive splitter would mangle.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			inString = !inString
		case ';':
			if inString {
				return fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
		}
	}
	return nil
}
