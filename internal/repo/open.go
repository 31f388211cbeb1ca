package repo

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Open returns the repository for databaseURL. postgres:// and postgresql://
// URLs select PostgreSQL; anything else is a path to a SQLite file,
// optionally prefixed with sqlite:// or file:.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (TaskRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if isPostgresURL(databaseURL) {
		logger.Info("using postgres store")
		pg, err := OpenPostgres(ctx, databaseURL, logger)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}

	path := SQLitePath(databaseURL)
	logger.Info("using sqlite store", zap.String("path", path))
	lite, err := OpenSQLite(path, logger)
	if err != nil {
		return nil, err
	}
	return lite, nil
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}

// SQLitePath strips the sqlite:// or file: scheme from u. A query string
// such as ?mode=rwc is left in place for OpenSQLite to pass to the driver.
func SQLitePath(u string) string {
	for _, prefix := range []string{"sqlite://", "sqlite3://", "file:"} {
		if strings.HasPrefix(u, prefix) {
			return strings.TrimPrefix(u, prefix)
		}
	}
	return u
}
