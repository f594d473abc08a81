//go:build cgo_sqlite

package main

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// initDB opens the database with the cgo sqlite driver. It reads its own
// DSN parameter names and skips the modernc _pragma form, so the default
// DSN still opens, just without those pragmas.
func initDB(dataSource string) (*sql.DB, error) {
	return sql.Open("sqlite3", dataSource)
}
