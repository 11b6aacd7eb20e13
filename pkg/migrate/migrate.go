package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/electrosoundpack/storefront-backend/pkg/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedded embed.FS

const (
	DefaultDir = "pkg/migrate/migrations/postgres"
	SQLiteDir  = "pkg/migrate/migrations/sqlite"

	embeddedRoot = "migrations"
)

// Dialect maps a configured driver to goose's dialect name.
func Dialect(driver string) string {
	if strings.EqualFold(driver, config.DriverSQLite) {
		return "sqlite3"
	}
	return "postgres"
}

// EmbeddedDir returns the embedded directory holding migrations for driver.
func EmbeddedDir(driver string) string {
	if strings.EqualFold(driver, config.DriverSQLite) {
		return path.Join(embeddedRoot, config.DriverSQLite)
	}
	return path.Join(embeddedRoot, config.DriverPostgres)
}

// prepare selects the dialect and the filesystem migrations are read from.
// An empty dir means the migrations compiled into the binary.
func prepare(driver, dir string) (string, error) {
	if err := goose.SetDialect(Dialect(driver)); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "" {
		goose.SetBaseFS(embedded)
		return EmbeddedDir(driver), nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}

	resolved, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	if err := goose.RunContext(ctx, command, db, resolved, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	resolved, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, resolved, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, resolved, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
