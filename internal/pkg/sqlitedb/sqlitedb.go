// Package sqlitedb opens the shared SQLite database used by all stores.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the payment handler writes while catalog reads may be in flight.
package sqlitedb

import (
	"database/sql"
	"fmt"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at the given path.
// Each store applies its own schema on construction.
//
//	db, err := sqlitedb.Open("./data/shop.db")
func Open(path string) (*sql.DB, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces the basket/product
	// relations. busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection. Serialising the
	// pool also makes the find-or-create and settle transactions race-free.
	db.SetMaxOpenConns(1)

	return db, nil
}
