package secscan

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/weitsai/opskit/internal/config"
)

// InstallState classifies the result of EnsureInstalled.
type InstallState int

const (
	AlreadyInstalled InstallState = iota
	Installed
	InstallFailed
)

// InstallOutcome reports how a tool was (or was not) obtained. Errors
// is non-empty only for InstallFailed and holds one human-readable
// reason per exhausted attempt.
type InstallOutcome struct {
	State  InstallState
	Path   string
	Errors []string
}

// Installer obtains scan tools through the fallback chain: existing
// binaries, package managers in catalog order, then GitHub releases.
type Installer struct {
	Config config.Config
}

// EnsureInstalled resolves the tool or works through its install
// strategies. A single strategy failing is recorded and the chain
// continues; only full exhaustion yields InstallFailed.
func (ins Installer) EnsureInstalled(tool Tool) InstallOutcome {
	if path, ok := ResolveTool(tool); ok {
		return InstallOutcome{State: AlreadyInstalled, Path: path}
	}

	var errs []string
	attempted := false

	for _, strategy := range tool.Strategies {
		if _, ok := FindExecutable(strategy.Program); !ok {
			continue
		}
		if strategy.Sudo {
			if _, ok := FindExecutable("sudo"); !ok {
				continue
			}
		}

		attempted = true
		if err := runStrategy(strategy); err != nil {
			errs = append(errs, fmt.Sprintf("%s failed: %v", strategy.Label, err))
			continue
		}

		if path, ok := ResolveTool(tool); ok {
			return InstallOutcome{State: Installed, Path: path}
		}
		errs = append(errs, fmt.Sprintf("%s finished but %s is still not resolvable", strategy.Label, tool.Binary))
	}

	if path, ok := ResolveTool(tool); ok {
		return InstallOutcome{State: Installed, Path: path}
	}

	if tool.ReleaseRepo != "" {
		attempted = true
		path, err := ins.installFromRelease(tool)
		if err == nil {
			return InstallOutcome{State: Installed, Path: path}
		}
		errs = append(errs, fmt.Sprintf("github release: %v", err))
	}

	if !attempted && len(errs) == 0 {
		errs = append(errs, "no installation method available")
	}

	return InstallOutcome{State: InstallFailed, Errors: errs}
}

func runStrategy(strategy InstallStrategy) error {
	program := strategy.Program
	args := strategy.Args
	if strategy.Sudo {
		args = append([]string{program}, args...)
		program = "sudo"
	}

	cmd := exec.Command(program, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := firstLine(stderr.Bytes())
		if msg == "" {
			msg = err.Error()
		}
		return &CommandError{Program: program, Message: msg}
	}
	return nil
}
