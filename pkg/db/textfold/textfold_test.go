package textfold

import (
	"testing"

	"gorm.io/gorm"
)

func TestFoldHandlesAccentedCapitals(t *testing.T) {
	if got := Fold("MOUSE ÓPTICO"); got != "mouse óptico" {
		t.Fatalf("unexpected fold: %q", got)
	}
}

func TestFolderPostgresUsesLower(t *testing.T) {
	f := For(nil)
	if got := f.Column("nombre"); got != "LOWER(nombre)" {
		t.Fatalf("unexpected column expr: %q", got)
	}
	if got := f.Text("ÓPTICO"); got != "óptico" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFolderSQLiteUsesFoldFunction(t *testing.T) {
	conn, err := gorm.Open(SQLite("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f := For(conn)
	if got := f.Column("nombre"); got != "sf_fold(COALESCE(nombre, ''))" {
		t.Fatalf("unexpected column expr: %q", got)
	}

	query := "SELECT " + sqliteFunc + "(?)"
	var folded string
	if err := conn.Raw(query, "ÓPTICO").Scan(&folded).Error; err != nil {
		t.Fatalf("fold query: %v", err)
	}
	if folded != "óptico" {
		t.Fatalf("sqlite fold returned %q", folded)
	}
}
