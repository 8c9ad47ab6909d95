// Package db contains the SQL statements, models, and migrations backing the
// storage package. SQLite is the default; a postgres:// DSN selects
// PostgreSQL instead.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/lib/pq" // postgres sql.DB driver initialization
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite" // sqlite sql.DB driver initialization
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect identifies the SQL flavor of an opened handle.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// DialectOf reports the dialect a DSN will be opened with.
func DialectOf(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

var hookOnce sync.Once

// Open initializes a connection to the database described by dsn and migrates
// it to the current schema. Anything other than a postgres URL is treated as a
// SQLite file path; missing parent directories are created.
func Open(ctx context.Context, logger *slog.Logger, dsn string) (*sql.DB, Dialect, error) {
	dialect := DialectOf(dsn)
	var (
		handle *sql.DB
		err    error
	)
	switch dialect {
	case Postgres:
		handle, err = sql.Open("postgres", dsn)
	default:
		handle, err = openSQLite(dsn)
	}
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to create DB handler: %w", err)
	} else if err = handle.PingContext(ctx); err != nil {
		return nil, dialect, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger = logger.With(slog.String("db", redact(dsn)), slog.String("dialect", string(dialect)))
	provider, err := goose.NewProvider(goose.Dialect(dialect), handle, migrationsFS(),
		goose.WithLogger(gooseLogger{logger}))
	if err != nil {
		return nil, dialect, fmt.Errorf("failed to prepare migrations: %w", err)
	}
	if _, err = provider.Up(ctx); err != nil {
		return nil, dialect, fmt.Errorf("failed to migrate: %w", err)
	}
	return handle, dialect, nil
}

func openSQLite(dbPath string) (*sql.DB, error) {
	if dbPath == ":memory:" { //nolint:revive // for documentation
		// noop
	} else if _, err := os.Stat(dbPath); err != nil {
		const userOnlyDirPerms = 0o700
		if err = os.MkdirAll(filepath.Dir(dbPath), userOnlyDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create db parent directory: %w", err)
		}
	}

	if strings.ContainsRune(dbPath, '?') {
		dbPath += "&"
	} else {
		dbPath += "?"
	}
	dbPath += "_pragma=foreign_keys(1)"

	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			const initSQL = `
			pragma journal_mode = WAL;
			pragma synchronous = normal;
			pragma temp_store = memory;
			`
			_, err := conn.ExecContext(context.Background(), initSQL, nil)
			return err
		})
	})

	handle, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	handle.SetMaxOpenConns(1)
	return handle, nil
}

func migrationsFS() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

func redact(dsn string) string {
	if DialectOf(dsn) != Postgres {
		return dsn
	}
	if at := strings.LastIndexByte(dsn, '@'); at >= 0 {
		scheme := dsn[:strings.Index(dsn, "://")+3]
		return scheme + "***" + dsn[at:]
	}
	return dsn
}

type gooseLogger struct{ logger *slog.Logger }

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
