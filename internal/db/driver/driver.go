// Package driver opens the history store named by a database URL.
package driver

import (
	"context"
	"strings"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/db/postgres"
	"github.com/jusunglee/hangulize/internal/db/sqlite"
)

// Open returns a PostgreSQL repository for postgres:// and postgresql://
// URLs and a SQLite one for anything else, treated as a file path.
func Open(ctx context.Context, url string) (db.Repository, error) {
	if IsPostgres(url) {
		return postgres.New(ctx, url)
	}
	return sqlite.New(ctx, url)
}

func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}
