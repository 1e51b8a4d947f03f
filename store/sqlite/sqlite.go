// Package sqlite wires store.sqlstore to the embedded SQLite driver. This is
// the default persistence backend, matching the original's embedded-DB
// deployment model.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/kaziai/core/store/sqlstore"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens (creating if needed) a SQLite database at dsn and returns a
// ready-to-use Store.
func Open(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: open %s: %w", dsn, err)
	}
	// SQLite serializes writers; a single connection avoids "database is
	// locked" errors under concurrent dispatches writing to the same file.
	db.SetMaxOpenConns(1)
	return sqlstore.Open(db, sqlstore.SQLite)
}
