package secscan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/weitsai/opskit/internal/platform"
)

// ArchiveKind classifies a release asset by its file suffix.
type ArchiveKind int

const (
	ArchiveUnknown ArchiveKind = iota
	ArchiveTarGz
	ArchiveZip
)

// ReleaseAsset is a downloadable archive picked from a GitHub release.
type ReleaseAsset struct {
	URL  string
	Kind ArchiveKind
}

type releaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type releaseResponse struct {
	Assets []releaseAsset `json:"assets"`
}

func classifyArchive(name string) ArchiveKind {
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return ArchiveTarGz
	case strings.HasSuffix(name, ".zip"):
		return ArchiveZip
	default:
		return ArchiveUnknown
	}
}

// matchesPlatform requires the lowercased asset name to contain at
// least one OS token and at least one architecture token. Substring
// containment, not parsing: release naming is not standardized.
func matchesPlatform(name string, p platform.Platform) bool {
	lower := strings.ToLower(name)

	osMatch := false
	for _, token := range p.OSTokens {
		if strings.Contains(lower, token) {
			osMatch = true
			break
		}
	}
	if !osMatch {
		return false
	}

	for _, token := range p.ArchTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// selectAsset filters assets by platform and archive kind, preferring
// the platform's archive format, then falling back to the first match.
// ok=false means no compatible release exists, which is not an error.
func selectAsset(assets []releaseAsset, p platform.Platform) (ReleaseAsset, bool) {
	var candidates []ReleaseAsset
	for _, asset := range assets {
		if asset.Name == "" || asset.BrowserDownloadURL == "" {
			continue
		}
		if !matchesPlatform(asset.Name, p) {
			continue
		}
		kind := classifyArchive(strings.ToLower(asset.Name))
		if kind == ArchiveUnknown {
			continue
		}
		candidates = append(candidates, ReleaseAsset{URL: asset.BrowserDownloadURL, Kind: kind})
	}

	if len(candidates) == 0 {
		return ReleaseAsset{}, false
	}

	preferred := ArchiveTarGz
	if p.PreferZip {
		preferred = ArchiveZip
	}
	for _, candidate := range candidates {
		if candidate.Kind == preferred {
			return candidate, true
		}
	}
	return candidates[0], true
}

// fetchLatestAsset queries the GitHub latest-release endpoint for a
// repository and picks the best matching asset for the platform.
func (ins Installer) fetchLatestAsset(repo string, p platform.Platform) (ReleaseAsset, bool, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", repo)

	body, err := ins.fetchURL(apiURL)
	if err != nil {
		return ReleaseAsset{}, false, err
	}

	var release releaseResponse
	if err := json.Unmarshal(body, &release); err != nil {
		return ReleaseAsset{}, false, fmt.Errorf("failed to parse release metadata from %s: %w", apiURL, err)
	}

	asset, ok := selectAsset(release.Assets, p)
	return asset, ok, nil
}

// fetchURL downloads a URL through curl, falling back to wget. A
// configured GitHub token is forwarded as an Authorization header.
func (ins Installer) fetchURL(url string) ([]byte, error) {
	if path, ok := FindExecutable("curl"); ok {
		args := []string{"-fsSL", "-H", "Accept: application/vnd.github+json", "-H", "User-Agent: opskit"}
		if ins.Config.GitHubToken != "" {
			args = append(args, "-H", "Authorization: Bearer "+ins.Config.GitHubToken)
		}
		args = append(args, url)
		return runDownloader(path, "curl", args)
	}

	if path, ok := FindExecutable("wget"); ok {
		args := []string{"-q", "-O", "-"}
		if ins.Config.GitHubToken != "" {
			args = append(args, "--header=Authorization: Bearer "+ins.Config.GitHubToken)
		}
		args = append(args, url)
		return runDownloader(path, "wget", args)
	}

	return nil, &CommandError{Program: "curl/wget", Message: "no download tool found"}
}

func runDownloader(path, name string, args []string) ([]byte, error) {
	cmd := exec.Command(path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := firstLine(stderr.Bytes())
		if msg == "" {
			msg = err.Error()
		}
		return nil, &CommandError{Program: name, Message: msg}
	}
	return stdout.Bytes(), nil
}

func (ins Installer) downloadToFile(url, dest string) error {
	body, err := ins.fetchURL(url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// extractArchive unpacks an archive with the matching system tool.
func extractArchive(archivePath string, kind ArchiveKind, destDir string) error {
	var name string
	var args []string

	switch kind {
	case ArchiveTarGz:
		name = "tar"
		args = []string{"-xzf", archivePath, "-C", destDir}
	case ArchiveZip:
		name = "unzip"
		args = []string{"-q", archivePath, "-d", destDir}
	default:
		return fmt.Errorf("unknown archive kind")
	}

	path, ok := FindExecutable(name)
	if !ok {
		return &CommandError{Program: name, Message: "not found"}
	}

	cmd := exec.Command(path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := firstLine(stderr.Bytes())
		if msg == "" {
			msg = err.Error()
		}
		return &CommandError{Program: name, Message: msg}
	}
	return nil
}

// findBinaryIn searches an extracted tree for a file named exactly
// like the tool binary (plus .exe on Windows).
func findBinaryIn(root, binary string) (string, bool) {
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == binary || (runtime.GOOS == "windows" && name == binary+".exe") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

// installBinary copies the binary into the install directory with the
// executable bits set explicitly; archives cannot be trusted to
// preserve permissions.
func installBinary(source, binary, installDir string) (string, error) {
	if err := os.MkdirAll(installDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", installDir, err)
	}

	target := filepath.Join(installDir, binary)
	if runtime.GOOS == "windows" {
		target += ".exe"
	}

	in, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy to %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}

	if err := os.Chmod(target, 0755); err != nil {
		return "", fmt.Errorf("failed to set permissions on %s: %w", target, err)
	}

	return target, nil
}

func (ins Installer) installDir() (string, error) {
	if ins.Config.InstallDir != "" {
		return ins.Config.InstallDir, nil
	}
	dir, ok := localBinDir()
	if !ok {
		return "", fmt.Errorf("no writable install directory found")
	}
	return dir, nil
}

// installFromRelease is the last-resort install path: download the
// latest matching release archive, extract it and place the binary in
// the install directory.
func (ins Installer) installFromRelease(tool Tool) (string, error) {
	p, ok := platform.Host()
	if !ok {
		return "", fmt.Errorf("unsupported OS or architecture")
	}

	asset, ok, err := ins.fetchLatestAsset(tool.ReleaseRepo, p)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no release asset matches this platform")
	}

	scratch, err := os.MkdirTemp("", "opskit-install-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	archiveName := "download.tar.gz"
	if asset.Kind == ArchiveZip {
		archiveName = "download.zip"
	}
	archivePath := filepath.Join(scratch, archiveName)
	if err := ins.downloadToFile(asset.URL, archivePath); err != nil {
		return "", err
	}

	extractDir := filepath.Join(scratch, "extract")
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", extractDir, err)
	}
	if err := extractArchive(archivePath, asset.Kind, extractDir); err != nil {
		return "", err
	}

	binaryPath, ok := findBinaryIn(extractDir, tool.Binary)
	if !ok {
		return "", &CommandError{Program: tool.Binary, Message: "binary not found in extracted archive"}
	}

	installDir, err := ins.installDir()
	if err != nil {
		return "", err
	}
	return installBinary(binaryPath, tool.Binary, installDir)
}
