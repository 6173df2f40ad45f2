package secscan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// WorktreeSnapshot owns a throwaway directory holding hard-linked
// copies of the repository's tracked, non-ignored files. Whoever builds
// it must Close it on every exit path.
type WorktreeSnapshot struct {
	root  string
	files int
}

// Root is the snapshot directory scanners are pointed at. It is never
// the real repository root.
func (s *WorktreeSnapshot) Root() string {
	return s.root
}

// Files is the number of files placed into the snapshot.
func (s *WorktreeSnapshot) Files() int {
	return s.files
}

// Close removes the snapshot directory recursively.
func (s *WorktreeSnapshot) Close() error {
	return os.RemoveAll(s.root)
}

// FindGitRoot ascends from start looking for a .git entry. A .git file
// (worktrees, submodules) counts as well as a directory.
func FindGitRoot(start string) (string, bool) {
	dir := start
	for {
		if _, err := os.Lstat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// BuildSnapshot creates a snapshot of repoRoot's tracked files that are
// not matched by ignore rules, so scanners without native gitignore
// support still skip ignored content. An empty snapshot is still
// returned when nothing survives filtering; callers decide how loudly
// to warn.
func BuildSnapshot(repoRoot string) (*WorktreeSnapshot, error) {
	root, err := makeScratchDir()
	if err != nil {
		return nil, err
	}

	snapshot, err := populateSnapshot(root, repoRoot)
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, err
	}
	return snapshot, nil
}

func populateSnapshot(root, repoRoot string) (*WorktreeSnapshot, error) {
	tracked, err := listTracked(repoRoot)
	if err != nil {
		return nil, err
	}
	if len(tracked) == 0 {
		return &WorktreeSnapshot{root: root}, nil
	}

	ignored, err := listIgnored(repoRoot, tracked)
	if err != nil {
		return nil, err
	}

	files := 0
	for _, rel := range tracked {
		if _, skip := ignored[rel]; skip {
			continue
		}

		source := filepath.Join(repoRoot, rel)
		info, err := os.Stat(source)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		dest := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
		}

		// Hard links are cheap; cross-device setups fall back to a
		// byte copy.
		if err := os.Link(source, dest); err != nil {
			if err := copyFile(source, dest); err != nil {
				return nil, err
			}
		}
		files++
	}

	return &WorktreeSnapshot{root: root, files: files}, nil
}

// makeScratchDir names the directory with pid and timestamp so
// concurrent runs never collide.
func makeScratchDir() (string, error) {
	base := filepath.Join(os.TempDir(), "opskit")
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", base, err)
	}

	dir := filepath.Join(base, fmt.Sprintf("git-scan-%d-%d", os.Getpid(), time.Now().UnixNano()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return dir, nil
}

// listTracked returns the repository's tracked paths. NUL-delimited:
// file names may legally contain newlines.
func listTracked(repoRoot string) ([]string, error) {
	cmd := exec.Command("git", "-C", repoRoot, "ls-files", "-z")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := firstLine(stderr.Bytes())
		if msg == "" {
			msg = err.Error()
		}
		return nil, &CommandError{Program: "git ls-files", Message: msg}
	}
	return splitNul(stdout.Bytes()), nil
}

// listIgnored asks git which tracked paths are matched by ignore
// rules, streaming them over stdin to dodge argv length limits.
// --no-index is required: without it check-ignore consults the index
// and never reports tracked paths, and every path here is tracked.
// Exit code 1 just means nothing is ignored.
func listIgnored(repoRoot string, paths []string) (map[string]struct{}, error) {
	ignored := make(map[string]struct{})
	if len(paths) == 0 {
		return ignored, nil
	}

	var input bytes.Buffer
	for _, path := range paths {
		input.WriteString(path)
		input.WriteByte(0)
	}

	cmd := exec.Command("git", "-C", repoRoot, "check-ignore", "-z", "--stdin", "--no-index")
	cmd.Stdin = &input
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			msg := firstLine(stderr.Bytes())
			if msg == "" {
				msg = err.Error()
			}
			return nil, &CommandError{Program: "git check-ignore", Message: msg}
		}
	}

	for _, path := range splitNul(stdout.Bytes()) {
		ignored[path] = struct{}{}
	}
	return ignored, nil
}

func splitNul(data []byte) []string {
	var out []string
	for _, chunk := range bytes.Split(data, []byte{0}) {
		if len(chunk) > 0 {
			out = append(out, string(chunk))
		}
	}
	return out
}

func copyFile(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", dest, err)
	}
	return out.Close()
}
