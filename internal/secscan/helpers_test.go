package secscan

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// setupEnv points HOME at a fresh temp dir and PATH at a stub bin dir
// (prepended to the original PATH so /bin/sh scripts keep working).
// Returns the temp HOME and the stub bin dir.
func setupEnv(t *testing.T) (string, string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}

	tmpDir, err := os.MkdirTemp("", "opskit-secscan-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	binDir := filepath.Join(tmpDir, "stubbin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatalf("Failed to create stub bin dir: %v", err)
	}

	originalHome := os.Getenv("HOME")
	originalPath := os.Getenv("PATH")
	os.Setenv("HOME", tmpDir)
	os.Setenv("PATH", binDir+string(os.PathListSeparator)+originalPath)

	t.Cleanup(func() {
		os.Setenv("HOME", originalHome)
		os.Setenv("PATH", originalPath)
		os.RemoveAll(tmpDir)
	})

	return tmpDir, binDir
}

// writeScript drops an executable shell script into dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write script %s: %v", name, err)
	}
	return path
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// initGitRepo creates a repository with tracked files a.txt and b.txt,
// a tracked-but-ignored secret.log, and an untracked d.txt.
func initGitRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	repo, err := os.MkdirTemp("", "opskit-repo-test-*")
	if err != nil {
		t.Fatalf("Failed to create repo dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(repo) })

	git := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", repo}, args...)...)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	git("init", "-q")
	git("config", "user.email", "test@example.com")
	git("config", "user.name", "test")

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(repo, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	write("a.txt", "alpha\n")
	write("b.txt", "beta\n")
	write("secret.log", "should not be scanned\n")
	git("add", "a.txt", "b.txt", "secret.log")
	git("commit", "-q", "-m", "initial")

	// secret.log stays tracked but becomes ignored.
	write(".gitignore", "*.log\n")
	git("add", ".gitignore")
	git("commit", "-q", "-m", "ignore logs")

	write("d.txt", "untracked\n")

	return repo
}
