// Package db opens the read-only SQLite snapshot that backs every stop
// query. The snapshot file is produced out-of-band by the data refresh
// pipeline and replaced atomically; this process never writes to it.
package db

import (
	"database/sql"
	"fmt"
	"os"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/yourorg/busstopapi/internal/geometry"
)

// DriverName is the sqlite3 driver variant with the haversine_m SQL
// function registered on every connection, so distance ordering can be
// pushed down into the engine like any other expression.
const DriverName = "sqlite3_stops"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("haversine_m", geometry.HaversineMeters, true)
		},
	})
}

// Open returns a handle on the stops snapshot at path, opened read-only.
// A missing or unreadable file is fatal to startup, not per-request, so
// callers are expected to treat any error here as terminal.
func Open(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stops snapshot not found at %s: %w", path, err)
	}

	handle, err := sql.Open(DriverName, fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("open stops snapshot: %w", err)
	}

	// sql.Open is lazy; make sure the stops relation is actually readable
	// before the server starts taking traffic.
	var count int
	if err := handle.QueryRow("SELECT COUNT(*) FROM stops").Scan(&count); err != nil {
		handle.Close()
		return nil, fmt.Errorf("stops snapshot unreadable: %w", err)
	}

	return handle, nil
}
