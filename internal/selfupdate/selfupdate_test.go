package selfupdate

import (
	"os"
	"path/filepath"
	"testing"
)

func setupTestHome(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "opskit-selfupdate-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)

	t.Cleanup(func() {
		os.Setenv("HOME", originalHome)
		os.RemoveAll(tmpDir)
	})

	return tmpDir
}

func TestNewerVersion(t *testing.T) {
	cases := []struct {
		current, latest string
		want            bool
	}{
		{"v1.0.0", "v1.0.1", true},
		{"1.0.0", "v1.0.1", true},
		{"v1.0.1", "v1.0.1", false},
		{"v1.2.0", "v1.1.9", false},
		{"dev", "v1.0.0", false},
	}

	for _, c := range cases {
		if got := newerVersion(c.current, c.latest); got != c.want {
			t.Errorf("newerVersion(%q, %q) = %v, want %v", c.current, c.latest, got, c.want)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	setupTestHome(t)

	if err := saveCache("v2.0.0\nupdate"); err != nil {
		t.Fatalf("saveCache failed: %v", err)
	}

	version, hasUpdate := readCache()
	if version != "v2.0.0" {
		t.Errorf("version = %q, want v2.0.0", version)
	}
	if !hasUpdate {
		t.Error("hasUpdate = false, want true")
	}
}

func TestReadCacheMissing(t *testing.T) {
	setupTestHome(t)

	version, hasUpdate := readCache()
	if version != "" || hasUpdate {
		t.Errorf("readCache() = %q, %v on a fresh home", version, hasUpdate)
	}
}

func TestNoticeWithoutPendingUpdate(t *testing.T) {
	home := setupTestHome(t)

	// A fresh cache with no pending update keeps Notice quiet.
	if err := saveCache("v1.0.0"); err != nil {
		t.Fatalf("saveCache failed: %v", err)
	}
	cache := filepath.Join(home, ".config", "opskit", ".update-check")
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache file not created: %v", err)
	}

	if notice := Notice("v1.0.0"); notice != "" {
		t.Errorf("Notice = %q, want empty", notice)
	}
}

func TestNoticeWithPendingUpdate(t *testing.T) {
	setupTestHome(t)

	if err := saveCache("v9.9.9\nupdate"); err != nil {
		t.Fatalf("saveCache failed: %v", err)
	}

	notice := Notice("v1.0.0")
	if notice == "" {
		t.Fatal("Notice should surface the pending update")
	}
}
