// Package textfold gives case-insensitive search the same Unicode semantics
// on postgres and sqlite. Sqlite's LOWER only folds ASCII, so sqlite
// connections opened here get a fold function backed by golang.org/x/text.
package textfold

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	// DriverName is the database/sql driver registered for sqlite.
	DriverName = "sqlite3_textfold"

	sqliteFunc = "sf_fold"
)

var register sync.Once

// SQLite returns a gorm dialector whose connections carry the fold function.
func SQLite(dsn string) gorm.Dialector {
	register.Do(func() {
		sql.Register(DriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc(sqliteFunc, Fold, true)
			},
		})
	})
	return sqlite.New(sqlite.Config{DriverName: DriverName, DSN: dsn})
}

// Fold is the full Unicode case fold used on sqlite.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Folder builds matching column expressions and search text for one dialect.
type Folder struct {
	sqlite bool
}

func For(conn *gorm.DB) Folder {
	return Folder{sqlite: conn != nil && conn.Dialector != nil && strings.Contains(conn.Dialector.Name(), "sqlite")}
}

// Column wraps col in the dialect's fold expression.
func (f Folder) Column(col string) string {
	if f.sqlite {
		return sqliteFunc + "(COALESCE(" + col + ", ''))"
	}
	return "LOWER(" + col + ")"
}

// Text folds a search term the way Column folds stored values.
func (f Folder) Text(s string) string {
	if f.sqlite {
		return Fold(s)
	}
	return strings.ToLower(s)
}
