package shared

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS is how long a writer waits on a locked library before failing.
const busyTimeoutMS = 5000

// NewDatabase opens the SQLite library at path, creating its parent directory when needed.
// ":memory:" opens a private in-memory library. File libraries use WAL so `chordx serve` can read while a batch
// conversion records history.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=%d", path, busyTimeoutMS)
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create library directory: %w", err)
			}
		}
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open library %s: %w", path, err)
	}
	return db, nil
}

// ConfigureDatabase applies pool limits from [DatabaseConfig]. Zero leaves the driver default in place.
// An in-memory library must be held to one open connection, since each connection sees its own database.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
}
