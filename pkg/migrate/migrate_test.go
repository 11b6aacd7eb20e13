package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Run(context.Background(), sqlDB, "sqlite", "", "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	for _, table := range []string{"products", "users", "carts"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s after migrations", table)
		}
	}
}

func TestMigrationDirsValidate(t *testing.T) {
	for _, dir := range []string{"migrations/postgres", "migrations/sqlite"} {
		if err := ValidateDir(dir); err != nil {
			t.Fatalf("validate %s: %v", dir, err)
		}
	}
}

func TestPostgresAndSQLiteMigrationsStayInStep(t *testing.T) {
	pg, _ := filepath.Glob(filepath.Join("migrations", "postgres", "*.sql"))
	lite, _ := filepath.Glob(filepath.Join("migrations", "sqlite", "*.sql"))
	if len(pg) == 0 || len(pg) != len(lite) {
		t.Fatalf("expected matching migration sets, got %d postgres and %d sqlite", len(pg), len(lite))
	}
	for i := range pg {
		if filepath.Base(pg[i]) != filepath.Base(lite[i]) {
			t.Fatalf("migration %d differs: %s vs %s", i, filepath.Base(pg[i]), filepath.Base(lite[i]))
		}
	}
}

func TestCreateSQLMigrationsWritesBothDialects(t *testing.T) {
	root := t.TempDir()
	paths, err := CreateSQLMigrations(root, "Add Product Tags!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 files, got %d", len(paths))
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, "_add_product_tags.sql") {
			t.Fatalf("unexpected filename %s", p)
		}
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if !strings.Contains(string(body), "-- +goose Up") {
			t.Fatalf("missing goose header in %s", p)
		}
	}
	for _, sub := range []string{"postgres", "sqlite"} {
		if err := ValidateDir(filepath.Join(root, sub)); err != nil {
			t.Fatalf("created migration should validate: %v", err)
		}
	}
	if _, err := CreateSQLMigrations(root, "  "); err == nil {
		t.Fatal("blank name should fail")
	}
}

func TestDialect(t *testing.T) {
	if Dialect("SQLite") != "sqlite3" || Dialect("postgres") != "postgres" || Dialect("") != "postgres" {
		t.Fatal("unexpected dialect mapping")
	}
}
