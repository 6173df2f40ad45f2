package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings. It is loaded once in main and
// passed into the components that need it; nothing reads it ambiently
// and nothing mutates it after Load returns.
type Config struct {
	// GitHubToken is sent as an Authorization header on GitHub API
	// requests to avoid anonymous rate limits. Never hard-coded.
	GitHubToken string `yaml:"github_token"`
	// InstallDir overrides where downloaded tool binaries are placed.
	// Empty means ~/.local/bin.
	InstallDir string `yaml:"install_dir"`
	// NPMClient selects the package manager for 'opskit upgrade'
	// (npm or pnpm). Empty means npm.
	NPMClient string `yaml:"npm_client"`
}

// Path returns the config file location (~/.config/opskit/config.yaml).
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "opskit", "config.yaml"), nil
}

// Load reads the config file if present, then applies environment
// overrides. A missing file is not an error. An ambient GITHUB_TOKEN
// is only a fallback: it never overrides a token from the file or
// from OPSKIT_GITHUB_TOKEN.
func Load() (Config, error) {
	var cfg Config

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if token := os.Getenv("OPSKIT_GITHUB_TOKEN"); token != "" {
		cfg.GitHubToken = token
	} else if token := os.Getenv("GITHUB_TOKEN"); cfg.GitHubToken == "" && token != "" {
		cfg.GitHubToken = token
	}
	if dir := os.Getenv("OPSKIT_INSTALL_DIR"); dir != "" {
		cfg.InstallDir = dir
	}
	if client := os.Getenv("OPSKIT_NPM_CLIENT"); client != "" {
		cfg.NPMClient = client
	}

	return cfg, nil
}
