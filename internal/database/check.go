package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// CheckConnection opens a one-off database/sql connection through lib/pq and
// pings it. It does not touch the shared pool, so it can diagnose a DSN
// before the service starts.
func CheckConnection(ctx context.Context, connString string) (string, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return "", fmt.Errorf("open connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("ping: %w", err)
	}

	var version string
	if err := db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("query server version: %w", err)
	}
	return version, nil
}
