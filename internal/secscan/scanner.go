package secscan

import (
	"bytes"
	"errors"
	"os/exec"
)

// ScanStatus classifies one scan command's result by exit code alone:
// 0 clean, 1 findings, anything else (including spawn failure) error.
// The invocation flags in the catalog force every tool into this
// convention, so the classifier never inspects tool-specific output.
type ScanStatus int

const (
	Clean ScanStatus = iota
	Findings
	ScanError
)

func (s ScanStatus) String() string {
	switch s {
	case Clean:
		return "clean"
	case Findings:
		return "findings"
	default:
		return "error"
	}
}

// ScanOutcome is the observation record for one executed ScanCommand.
// ExitCode is -1 when the process never ran.
type ScanOutcome struct {
	Label    string
	Status   ScanStatus
	ExitCode int
	Stdout   string
	Stderr   string
}

// RunScans executes each of the tool's commands in catalog order,
// blocking on each before starting the next. The tool path is resolved
// fresh; a tool that vanished since resolution is an immediate error.
func RunScans(tool Tool, repoRoot, worktreeRoot string) ([]ScanOutcome, error) {
	toolPath, ok := ResolveTool(tool)
	if !ok {
		return nil, &CommandError{Program: tool.Binary, Message: "tool not found"}
	}

	commands := tool.Commands(repoRoot, worktreeRoot)
	outcomes := make([]ScanOutcome, 0, len(commands))
	for _, command := range commands {
		outcomes = append(outcomes, runCommand(toolPath, command))
	}
	return outcomes, nil
}

func runCommand(toolPath string, command ScanCommand) ScanOutcome {
	cmd := exec.Command(toolPath, command.Args...)
	if command.Workdir != "" {
		cmd.Dir = command.Workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	outcome := ScanOutcome{
		Label:    command.Label,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	switch {
	case err == nil:
		outcome.Status = Clean
		outcome.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			if outcome.ExitCode == 1 {
				outcome.Status = Findings
			} else {
				outcome.Status = ScanError
			}
		} else {
			// Spawn failure; no exit code to report.
			outcome.Status = ScanError
			outcome.Stderr = err.Error()
		}
	}

	return outcome
}
