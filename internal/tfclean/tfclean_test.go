package tfclean

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func setupTree(t *testing.T) string {
	t.Helper()

	root, err := os.MkdirTemp("", "opskit-tfclean-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })

	mkdir := func(parts ...string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(append([]string{root}, parts...)...), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
	}
	write := func(parts ...string) {
		t.Helper()
		path := filepath.Join(append([]string{root}, parts...)...)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}

	mkdir("prod", ".terraform", "providers")
	write("prod", ".terraform", "providers", "plugin.bin")
	write("prod", ".terraform.lock.hcl")
	mkdir("stage", ".terragrunt-cache", "abc123")
	write("stage", "main.tf")
	mkdir(".hiddenproject", ".terraform")
	write("notes.txt")

	return root
}

func targetPaths(targets []Target) []string {
	paths := make([]string, len(targets))
	for i, target := range targets {
		paths[i] = target.Path
	}
	sort.Strings(paths)
	return paths
}

func TestFindTargets(t *testing.T) {
	root := setupTree(t)

	targets, err := FindTargets(root)
	if err != nil {
		t.Fatalf("FindTargets failed: %v", err)
	}

	want := []string{
		filepath.Join(root, "prod", ".terraform"),
		filepath.Join(root, "prod", ".terraform.lock.hcl"),
		filepath.Join(root, "stage", ".terragrunt-cache"),
	}
	sort.Strings(want)

	got := targetPaths(targets)
	if len(got) != len(want) {
		t.Fatalf("targets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("targets[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindTargetsSkipsOtherHiddenDirs(t *testing.T) {
	root := setupTree(t)

	targets, err := FindTargets(root)
	if err != nil {
		t.Fatalf("FindTargets failed: %v", err)
	}

	hidden := filepath.Join(root, ".hiddenproject")
	for _, target := range targets {
		if strings.HasPrefix(target.Path, hidden) {
			t.Errorf("hidden project dirs must not be walked, found %s", target.Path)
		}
	}
}

func TestFindTargetsDoesNotDescendIntoCaches(t *testing.T) {
	root := setupTree(t)

	targets, err := FindTargets(root)
	if err != nil {
		t.Fatalf("FindTargets failed: %v", err)
	}

	for _, target := range targets {
		if filepath.Base(target.Path) == "providers" || filepath.Base(target.Path) == "plugin.bin" {
			t.Errorf("cache contents must not be individual targets, found %s", target.Path)
		}
	}
}

func TestFindTargetsEmptyTree(t *testing.T) {
	root, err := os.MkdirTemp("", "opskit-tfclean-empty-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(root)

	targets, err := FindTargets(root)
	if err != nil {
		t.Fatalf("FindTargets failed: %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("got %d targets in an empty tree, want 0", len(targets))
	}
}

func TestFindTargetsMarksDirectories(t *testing.T) {
	root := setupTree(t)

	targets, err := FindTargets(root)
	if err != nil {
		t.Fatalf("FindTargets failed: %v", err)
	}

	for _, target := range targets {
		isDir := filepath.Base(target.Path) != terraformLockFn
		if target.IsDir != isDir {
			t.Errorf("%s IsDir = %v, want %v", target.Path, target.IsDir, isDir)
		}
	}
}

func TestRunRemovesEverythingWithYes(t *testing.T) {
	root := setupTree(t)

	if err := Run(Options{Dir: root, Yes: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	gone := []string{
		filepath.Join(root, "prod", ".terraform"),
		filepath.Join(root, "prod", ".terraform.lock.hcl"),
		filepath.Join(root, "stage", ".terragrunt-cache"),
	}
	for _, path := range gone {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s should have been removed", path)
		}
	}

	// Regular project files stay put.
	kept := []string{
		filepath.Join(root, "stage", "main.tf"),
		filepath.Join(root, "notes.txt"),
	}
	for _, path := range kept {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s should not have been touched: %v", path, err)
		}
	}
}

func TestRunNotADirectory(t *testing.T) {
	root := setupTree(t)

	err := Run(Options{Dir: filepath.Join(root, "notes.txt"), Yes: true})
	if err == nil {
		t.Fatal("a file root should be an error")
	}
}

func TestRunMissingRoot(t *testing.T) {
	if err := Run(Options{Dir: "/definitely/not/a/real/path", Yes: true}); err == nil {
		t.Fatal("a missing root should be an error")
	}
}
