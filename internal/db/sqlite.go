package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	database *sql.DB
	once     sync.Once
)

// InitDB opens the opskit database and creates tables if needed.
func InitDB() error {
	var err error
	once.Do(func() {
		homeDir, e := os.UserHomeDir()
		if e != nil {
			err = fmt.Errorf("failed to get home directory: %w", e)
			return
		}

		configDir := filepath.Join(homeDir, ".config", "opskit")
		if e := os.MkdirAll(configDir, 0755); e != nil {
			err = fmt.Errorf("failed to create config directory: %w", e)
			return
		}

		dbPath := filepath.Join(configDir, "opskit.db")
		database, e = sql.Open("sqlite", dbPath)
		if e != nil {
			err = fmt.Errorf("failed to open database: %w", e)
			return
		}

		err = createTables()
	})
	return err
}

// GetDB returns the database instance, nil before InitDB.
func GetDB() *sql.DB {
	return database
}

// Close closes the database connection.
func Close() error {
	if database != nil {
		return database.Close()
	}
	return nil
}

// ResetForTesting clears the singleton so tests can re-init against a
// different HOME.
func ResetForTesting() {
	database = nil
	once = sync.Once{}
}

func createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tool TEXT NOT NULL,
		label TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS menu_usage (
		command TEXT PRIMARY KEY,
		count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	if _, err := database.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
