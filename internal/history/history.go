// Package history records scan-run outcomes and menu usage counts in
// the opskit database. Only status tallies are stored, never scanner
// output or finding content.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/weitsai/opskit/internal/db"
)

// Entry is one recorded scan command run.
type Entry struct {
	Tool      string
	Label     string
	Status    string
	ExitCode  sql.NullInt64
	CreatedAt time.Time
}

// Record stores the outcome of a single scan command. exitCode may be
// nil when the process never ran.
func Record(tool, label, status string, exitCode *int) error {
	conn := db.GetDB()
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}

	var code sql.NullInt64
	if exitCode != nil {
		code = sql.NullInt64{Int64: int64(*exitCode), Valid: true}
	}

	_, err := conn.Exec(
		"INSERT INTO runs (tool, label, status, exit_code, created_at) VALUES (?, ?, ?, ?, ?)",
		tool, label, status, code, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func Recent(limit int) ([]Entry, error) {
	conn := db.GetDB()
	if conn == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := conn.Query(
		"SELECT tool, label, status, exit_code, created_at FROM runs ORDER BY created_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.Tool, &e.Label, &e.Status, &e.ExitCode, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// IncrementUsage bumps the menu usage counter for a command.
func IncrementUsage(command string) error {
	conn := db.GetDB()
	if conn == nil {
		return fmt.Errorf("database not initialized")
	}

	_, err := conn.Exec(
		"INSERT INTO menu_usage (command, count) VALUES (?, 1) ON CONFLICT(command) DO UPDATE SET count = count + 1",
		command,
	)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// UsageCounts returns usage counters for all commands seen so far.
func UsageCounts() (map[string]int, error) {
	conn := db.GetDB()
	if conn == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := conn.Query("SELECT command, count FROM menu_usage")
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var command string
		var count int
		if err := rows.Scan(&command, &count); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		counts[command] = count
	}
	return counts, rows.Err()
}
