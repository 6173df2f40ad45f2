// Package selfupdate replaces the running opskit binary with the
// latest GitHub release build for this platform.
package selfupdate

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/weitsai/opskit/internal/ui"
)

const (
	repoOwner     = "weitsai"
	repoName      = "opskit"
	checkInterval = 24 * time.Hour
	latestAPIURL  = "https://api.github.com/repos/%s/%s/releases/latest"
)

// Release is the subset of GitHub release metadata the updater needs.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Info describes the result of an update check.
type Info struct {
	CurrentVersion string
	LatestVersion  string
	Available      bool
	ReleaseURL     string
}

func cacheFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "opskit", ".update-check"), nil
}

func fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf(latestAPIURL, repoOwner, repoName)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &release, nil
}

func saveCache(content string) error {
	path, err := cacheFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func readCache() (version string, hasUpdate bool) {
	path, err := cacheFile()
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	parts := strings.Split(string(data), "\n")
	if len(parts) >= 1 {
		version = strings.TrimSpace(parts[0])
	}
	if len(parts) >= 2 {
		hasUpdate = parts[1] == "update"
	}
	return version, hasUpdate
}

func shouldCheck() bool {
	path, err := cacheFile()
	if err != nil {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > checkInterval
}

// newerVersion reports whether latest is newer than current. Plain
// string comparison after stripping the v prefix, good enough for
// zero-padded-free semver tags.
func newerVersion(current, latest string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")
	return latest > current
}

// Check fetches the latest release and caches the result so Notice can
// surface it later without a network round trip.
func Check(currentVersion string) (*Info, error) {
	release, err := fetchLatestRelease()
	if err != nil {
		return nil, err
	}

	info := &Info{
		CurrentVersion: currentVersion,
		LatestVersion:  release.TagName,
		Available:      newerVersion(currentVersion, release.TagName),
		ReleaseURL:     release.HTMLURL,
	}

	cacheContent := release.TagName
	if info.Available {
		cacheContent += "\nupdate"
	}
	_ = saveCache(cacheContent)

	return info, nil
}

// Notice returns a short upgrade hint when a cached check found a newer
// version, refreshing the cache in the background when it went stale.
// Empty string means nothing to say.
func Notice(currentVersion string) string {
	if shouldCheck() {
		go func() { _, _ = Check(currentVersion) }()
	}

	version, hasUpdate := readCache()
	if !hasUpdate || !newerVersion(currentVersion, version) {
		return ""
	}
	return fmt.Sprintf("opskit %s available (current: %s), run 'opskit self-update'", version, currentVersion)
}

// Apply downloads the release binary for this platform and swaps the
// running executable, keeping a backup until the rename succeeds.
func Apply(currentVersion string) error {
	ui.Info("Checking for updates...")

	info, err := Check(currentVersion)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !info.Available {
		ui.SuccessItem("already up to date (version " + currentVersion + ")")
		return nil
	}

	ui.Info(fmt.Sprintf("New version available: %s (current: %s)", info.LatestVersion, info.CurrentVersion))
	ui.Info("Release: " + info.ReleaseURL)

	assetName := fmt.Sprintf("opskit-%s-%s", runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		assetName += ".exe"
	}
	downloadURL := fmt.Sprintf("https://github.com/%s/%s/releases/download/%s/%s",
		repoOwner, repoName, info.LatestVersion, assetName)

	ui.Info("Downloading " + assetName + "...")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d (asset may not exist for your platform)", resp.StatusCode)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "opskit-update-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	_, err = io.Copy(tmpFile, resp.Body)
	_ = tmpFile.Close()
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	backupPath := execPath + ".backup"
	if err := os.Rename(execPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup current binary: %w", err)
	}
	if err := os.Rename(tmpPath, execPath); err != nil {
		// Put the old binary back before reporting
		_ = os.Rename(backupPath, execPath)
		return fmt.Errorf("failed to install update: %w", err)
	}
	_ = os.Remove(backupPath)

	if path, err := cacheFile(); err == nil {
		_ = os.Remove(path)
	}

	ui.SuccessItem("updated to " + info.LatestVersion)
	return nil
}
