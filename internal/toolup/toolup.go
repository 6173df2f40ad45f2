// Package toolup upgrades the globally installed AI assistant CLIs
// through the configured node package manager.
package toolup

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/weitsai/opskit/internal/config"
	"github.com/weitsai/opskit/internal/ui"
)

// Packages is the fixed upgrade set, in upgrade order.
var Packages = []string{
	"@anthropic-ai/claude-code",
	"@openai/codex",
	"@google/gemini-cli",
	"@github/copilot",
}

// Options configures an upgrade run.
type Options struct {
	Yes    bool // skip the confirmation prompt
	Config config.Config
}

// Result is the outcome of one package upgrade.
type Result struct {
	Package string
	Err     error
}

// Run upgrades every package in Packages sequentially, printing a
// per-package status line and an aggregate summary.
func Run(opts Options) error {
	client, args := clientCommand(opts.Config.NPMClient)

	if _, err := exec.LookPath(client); err != nil {
		return fmt.Errorf("%s not found on PATH", client)
	}

	ui.Header("Upgrade AI assistant CLIs")
	for _, pkg := range Packages {
		ui.ListItem("⬆", pkg)
	}
	fmt.Println()

	if !opts.Yes {
		proceed := true
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Upgrade %d package(s) with %s?", len(Packages), client)).
					Value(&proceed),
			),
		)
		if err := form.Run(); err != nil || !proceed {
			ui.Warn("upgrade canceled")
			return nil
		}
	}

	results := upgradeAll(client, args, Packages)

	succeeded := 0
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			ui.ErrorItem(result.Package+" failed", result.Err.Error())
			failed++
		} else {
			ui.SuccessItem(result.Package + " upgraded")
			succeeded++
		}
	}

	ui.Summary("Upgrade summary", succeeded, failed)
	return nil
}

// clientCommand maps the configured client name to the program and the
// global-install argument prefix. Unknown values fall back to npm.
func clientCommand(name string) (string, []string) {
	switch strings.ToLower(name) {
	case "pnpm":
		return "pnpm", []string{"add", "-g"}
	default:
		return "npm", []string{"install", "-g"}
	}
}

// upgradeAll runs the package manager once per package, blocking on
// each. A failed upgrade carries the first stderr line and never stops
// the remaining packages.
func upgradeAll(client string, args, packages []string) []Result {
	results := make([]Result, 0, len(packages))

	for _, pkg := range packages {
		cmdArgs := append(append([]string{}, args...), pkg+"@latest")
		cmd := exec.Command(client, cmdArgs...)

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err != nil {
			line := firstLine(stderr.Bytes())
			if line == "" {
				line = err.Error()
			}
			err = fmt.Errorf("%s", line)
		}
		results = append(results, Result{Package: pkg, Err: err})
	}

	return results
}

func firstLine(output []byte) string {
	trimmed := strings.TrimSpace(string(output))
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
