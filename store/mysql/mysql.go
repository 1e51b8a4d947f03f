// Package mysql wires store.sqlstore to github.com/go-sql-driver/mysql, an
// alternate backend selected via DB_DRIVER=mysql for deployments that need a
// shared server instead of the default embedded SQLite file.
package mysql

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/kaziai/core/store/sqlstore"
)

// Open connects to a MySQL server using dsn (user:pass@tcp(host:port)/db)
// and returns a ready-to-use Store.
func Open(dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store/mysql: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store/mysql: ping: %w", err)
	}
	return sqlstore.Open(db, sqlstore.MySQL)
}
