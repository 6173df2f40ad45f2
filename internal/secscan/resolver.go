package secscan

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// FindExecutable searches PATH for a program, honoring the Windows
// executable extensions. Absence is an expected outcome, not an error.
func FindExecutable(name string) (string, bool) {
	if filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		if isRegularFile(name) {
			return name, true
		}
		return "", false
	}

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		for _, ext := range executableExtensions() {
			candidate := filepath.Join(dir, name+ext)
			if isRegularFile(candidate) {
				return candidate, true
			}
		}
	}

	return "", false
}

func executableExtensions() []string {
	if runtime.GOOS == "windows" {
		return []string{"", ".exe", ".cmd", ".bat"}
	}
	return []string{""}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ResolveTool locates an already-installed binary for a tool. Search
// order: PATH, then ~/.local/bin, then the Go toolchain's bin directory
// (only probed when go itself is present).
func ResolveTool(tool Tool) (string, bool) {
	if path, ok := FindExecutable(tool.Binary); ok {
		return path, true
	}

	if dir, ok := localBinDir(); ok {
		if path, ok := findInDir(dir, tool.Binary); ok {
			return path, true
		}
	}

	if dir, ok := goBinDir(); ok {
		if path, ok := findInDir(dir, tool.Binary); ok {
			return path, true
		}
	}

	return "", false
}

func findInDir(dir, binary string) (string, bool) {
	for _, ext := range executableExtensions() {
		candidate := filepath.Join(dir, binary+ext)
		if isRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func localBinDir() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(homeDir, ".local", "bin"), true
}

// goBinDir resolves where `go install` places binaries: GOBIN if set,
// otherwise GOPATH/bin as reported by the toolchain.
func goBinDir() (string, bool) {
	if gobin := strings.TrimSpace(os.Getenv("GOBIN")); gobin != "" {
		return gobin, true
	}

	if _, ok := FindExecutable("go"); !ok {
		return "", false
	}

	if gobin := goEnv("GOBIN"); gobin != "" {
		return gobin, true
	}
	if gopath := goEnv("GOPATH"); gopath != "" {
		return filepath.Join(gopath, "bin"), true
	}

	return "", false
}

func goEnv(key string) string {
	cmd := exec.Command("go", "env", key)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
