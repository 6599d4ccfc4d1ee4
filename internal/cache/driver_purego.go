//go:build !cgo_sqlite

package cache

import (
	_ "modernc.org/sqlite" // default: Pure Go SQLite
)

const driverName = "sqlite"
