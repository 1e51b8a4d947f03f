// Package postgres wires store.sqlstore to github.com/lib/pq, an alternate
// backend selected via DB_DRIVER=postgres.
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/kaziai/core/store/sqlstore"
	_ "github.com/lib/pq"
)

// Open connects to a Postgres server using dsn and returns a ready-to-use
// Store.
func Open(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store/postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store/postgres: ping: %w", err)
	}
	return sqlstore.Open(db, sqlstore.Postgres)
}
