package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setupTestHome points HOME at a temp directory and clears the env
// overrides so each test starts from a clean slate.
func setupTestHome(t *testing.T) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "opskit-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	for _, key := range []string{"OPSKIT_GITHUB_TOKEN", "GITHUB_TOKEN", "OPSKIT_INSTALL_DIR", "OPSKIT_NPM_CLIENT"} {
		original := os.Getenv(key)
		os.Unsetenv(key)
		key, original := key, original
		t.Cleanup(func() {
			if original != "" {
				os.Setenv(key, original)
			}
		})
	}

	t.Cleanup(func() {
		os.Setenv("HOME", originalHome)
		os.RemoveAll(tmpDir)
	})

	return tmpDir
}

func TestLoadMissingFile(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".config", "opskit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	content := "github_token: tok123\ninstall_dir: /opt/bin\nnpm_client: pnpm\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "tok123" {
		t.Errorf("GitHubToken = %q, want tok123", cfg.GitHubToken)
	}
	if cfg.InstallDir != "/opt/bin" {
		t.Errorf("InstallDir = %q, want /opt/bin", cfg.InstallDir)
	}
	if cfg.NPMClient != "pnpm" {
		t.Errorf("NPMClient = %q, want pnpm", cfg.NPMClient)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".config", "opskit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("github_token: from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	os.Setenv("OPSKIT_GITHUB_TOKEN", "from-env")
	defer os.Unsetenv("OPSKIT_GITHUB_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "from-env" {
		t.Errorf("GitHubToken = %q, want from-env", cfg.GitHubToken)
	}
}

func TestLoadGitHubTokenFallback(t *testing.T) {
	setupTestHome(t)

	os.Setenv("GITHUB_TOKEN", "ambient")
	defer os.Unsetenv("GITHUB_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "ambient" {
		t.Errorf("GitHubToken = %q, want ambient", cfg.GitHubToken)
	}
}

func TestLoadFileTokenBeatsAmbientToken(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".config", "opskit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("github_token: from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	// GITHUB_TOKEN is ambient shell state, not an opskit setting; an
	// explicit config file wins over it.
	os.Setenv("GITHUB_TOKEN", "ambient")
	defer os.Unsetenv("GITHUB_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GitHubToken != "from-file" {
		t.Errorf("GitHubToken = %q, want from-file", cfg.GitHubToken)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".config", "opskit")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(":\n\t- not yaml"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}
