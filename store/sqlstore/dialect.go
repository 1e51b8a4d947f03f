// Package sqlstore is a database/sql-backed implementation of
// store.TraceStore, store.GoalStore, and store.NegotiationStore shared by
// the sqlite, mysql, and postgres backends — they differ only in driver
// name and placeholder syntax.
package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures the one real difference between the three backends this
// core supports: how a positional placeholder is written.
type Dialect struct {
	Name        string
	Placeholder func(position int) string
}

var (
	SQLite   = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}
	MySQL    = Dialect{Name: "mysql", Placeholder: func(int) string { return "?" }}
	Postgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// rebind rewrites a query written with "?" placeholders into the dialect's
// native placeholder syntax.
func (d Dialect) rebind(query string) string {
	if d.Name != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
