//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
// Build with: go build -tags cgo_sqlite (requires CGO_ENABLED=1).
package cache

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const driverName = "sqlite3"
