package secscan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindExecutableOnPath(t *testing.T) {
	_, binDir := setupEnv(t)
	writeScript(t, binDir, "fakescan", "exit 0")

	path, ok := FindExecutable("fakescan")
	if !ok {
		t.Fatal("fakescan should be found on PATH")
	}
	if path != filepath.Join(binDir, "fakescan") {
		t.Errorf("path = %q, want %q", path, filepath.Join(binDir, "fakescan"))
	}
}

func TestFindExecutableMissing(t *testing.T) {
	setupEnv(t)

	if _, ok := FindExecutable("definitely-not-a-real-program-xyz"); ok {
		t.Error("nonexistent program should not be found")
	}
}

func TestFindExecutableAbsolutePath(t *testing.T) {
	_, binDir := setupEnv(t)
	path := writeScript(t, binDir, "fakescan", "exit 0")

	got, ok := FindExecutable(path)
	if !ok || got != path {
		t.Errorf("FindExecutable(%q) = %q, %v", path, got, ok)
	}

	if _, ok := FindExecutable(filepath.Join(binDir, "missing")); ok {
		t.Error("absolute path to a missing file should not resolve")
	}
}

func TestResolveToolFromLocalBin(t *testing.T) {
	home, _ := setupEnv(t)

	localBin := filepath.Join(home, ".local", "bin")
	if err := os.MkdirAll(localBin, 0755); err != nil {
		t.Fatalf("Failed to create local bin: %v", err)
	}
	writeScript(t, localBin, "fakescan", "exit 0")

	tool := Tool{Name: "Fake", Binary: "fakescan"}
	path, ok := ResolveTool(tool)
	if !ok {
		t.Fatal("tool in ~/.local/bin should resolve")
	}
	if path != filepath.Join(localBin, "fakescan") {
		t.Errorf("path = %q, want local bin", path)
	}
}

func TestResolveToolPathWinsOverLocalBin(t *testing.T) {
	home, binDir := setupEnv(t)

	localBin := filepath.Join(home, ".local", "bin")
	if err := os.MkdirAll(localBin, 0755); err != nil {
		t.Fatalf("Failed to create local bin: %v", err)
	}
	writeScript(t, localBin, "fakescan", "exit 0")
	onPath := writeScript(t, binDir, "fakescan", "exit 0")

	path, ok := ResolveTool(Tool{Name: "Fake", Binary: "fakescan"})
	if !ok {
		t.Fatal("tool should resolve")
	}
	if path != onPath {
		t.Errorf("path = %q, want PATH hit %q", path, onPath)
	}
}

func TestResolveToolAbsent(t *testing.T) {
	setupEnv(t)

	if _, ok := ResolveTool(Tool{Name: "Fake", Binary: "fakescan"}); ok {
		t.Error("absent tool should not resolve")
	}
}
