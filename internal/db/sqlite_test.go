package db

import (
	"os"
	"path/filepath"
	"testing"
)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (string, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "opskit-db-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)

	cleanup := func() {
		Close()
		ResetForTesting()
		os.Setenv("HOME", originalHome)
		os.RemoveAll(tmpDir)
	}

	return tmpDir, cleanup
}

func TestInitDB(t *testing.T) {
	tmpDir, cleanup := setupTestDB(t)
	defer cleanup()

	if err := InitDB(); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	dbPath := filepath.Join(tmpDir, ".config", "opskit", "opskit.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestInitDBCreatesTables(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	if err := InitDB(); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	conn := GetDB()
	if conn == nil {
		t.Fatal("GetDB returned nil")
	}

	for _, table := range []string{"runs", "menu_usage"} {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s not created: %v", table, err)
		}
	}
}

func TestInitDBIdempotent(t *testing.T) {
	_, cleanup := setupTestDB(t)
	defer cleanup()

	if err := InitDB(); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if err := InitDB(); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}
