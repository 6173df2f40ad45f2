package secscan

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/weitsai/opskit/internal/config"
	"github.com/weitsai/opskit/internal/history"
	"github.com/weitsai/opskit/internal/ui"
)

// Options configures a scan run.
type Options struct {
	Dir    string // starting directory, empty means cwd
	Yes    bool   // skip interactive prompts, scan with all tools
	Config config.Config
}

// Run drives the whole scan: locate the repository, build the worktree
// snapshot, install missing tools, run every available tool's commands
// sequentially and report an aggregate summary. The snapshot is
// released on every exit path.
func Run(opts Options) error {
	start := opts.Dir
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		start = cwd
	}

	repoRoot, ok := FindGitRoot(start)
	if !ok {
		return fmt.Errorf("not inside a git repository: %s", start)
	}
	if _, ok := FindExecutable("git"); !ok {
		return &CommandError{Program: "git", Message: "not found on PATH"}
	}

	ui.Header("Security scan")
	ui.Info("Repository: " + repoRoot)
	ui.Info("Scanning full git history and an isolated worktree snapshot")
	fmt.Println()

	snapshot, err := BuildSnapshot(repoRoot)
	if err != nil {
		return err
	}
	defer func() { _ = snapshot.Close() }()

	if snapshot.Files() == 0 {
		ui.Warn("no tracked files survive ignore filtering; worktree scans will see an empty snapshot")
	}

	tools, err := pickTools(opts.Yes)
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		ui.Warn("no tools selected, nothing to do")
		return nil
	}

	missing := 0
	for _, tool := range tools {
		if _, ok := ResolveTool(tool); ok {
			ui.ListItem("🔎", tool.Name+" (installed)")
		} else {
			ui.ListItem("🔎", tool.Name+" (missing)")
			missing++
		}
	}
	fmt.Println()

	if missing > 0 && !opts.Yes {
		if !confirm(fmt.Sprintf("Install %d missing tool(s) and start the scan?", missing)) {
			return ErrCanceled
		}
	}

	installTools(tools, Installer{Config: opts.Config})

	cleanCount := 0
	problemCount := 0
	hasFindings := false

	for _, tool := range tools {
		if _, ok := ResolveTool(tool); !ok {
			ui.Warn("skipping " + tool.Name + ": not installed")
			continue
		}

		ui.Info("Running " + tool.Name)
		outcomes, err := RunScans(tool, repoRoot, snapshot.Root())
		if err != nil {
			ui.ErrorItem(tool.Name+" failed", err.Error())
			problemCount++
			continue
		}

		for _, outcome := range outcomes {
			ui.Separator()
			printOutcome(outcome)

			switch outcome.Status {
			case Clean:
				ui.SuccessItem(outcome.Label + " passed")
				cleanCount++
			case Findings:
				hasFindings = true
				ui.ErrorItem(outcome.Label+" reported findings", formatExitCode(outcome.ExitCode))
				problemCount++
			default:
				ui.ErrorItem(outcome.Label+" failed", formatExitCode(outcome.ExitCode))
				problemCount++
			}

			recordOutcome(tool, outcome)
		}
		fmt.Println()
	}

	ui.Summary("Scan summary", cleanCount, problemCount)
	if hasFindings {
		ui.Warn("at least one scanner reported findings; review the output above")
	}
	return nil
}

// pickTools lets the user narrow the tool set; all tools are selected
// by default and non-interactive runs take the whole catalog.
func pickTools(yes bool) ([]Tool, error) {
	catalog := Catalog()
	if yes {
		return catalog, nil
	}

	options := make([]huh.Option[int], len(catalog))
	for i, tool := range catalog {
		options[i] = huh.NewOption(tool.Name, i).Selected(true)
	}

	var selected []int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select scan tools").
				Description("space: toggle, enter: confirm").
				Options(options...).
				Value(&selected),
		),
	)
	if err := form.Run(); err != nil {
		return nil, ErrCanceled
	}

	tools := make([]Tool, 0, len(selected))
	for _, idx := range selected {
		tools = append(tools, catalog[idx])
	}
	return tools, nil
}

func confirm(prompt string) bool {
	answer := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(prompt).Value(&answer),
		),
	)
	if err := form.Run(); err != nil {
		return false
	}
	return answer
}

func installTools(tools []Tool, installer Installer) {
	installed := 0
	failed := 0

	for _, tool := range tools {
		outcome := installer.EnsureInstalled(tool)
		switch outcome.State {
		case AlreadyInstalled:
			ui.SuccessItem(tool.Name + " already installed (" + outcome.Path + ")")
		case Installed:
			ui.SuccessItem(tool.Name + " installed (" + outcome.Path + ")")
			installed++
		default:
			detail := "no installation method available"
			if len(outcome.Errors) > 0 {
				detail = outcome.Errors[0]
				for _, msg := range outcome.Errors[1:] {
					detail += "; " + msg
				}
			}
			ui.ErrorItem(tool.Name+" could not be installed", detail)
			failed++
		}
	}

	if installed > 0 || failed > 0 {
		ui.Summary("Install summary", installed, failed)
		fmt.Println()
	}
}

func printOutcome(outcome ScanOutcome) {
	ui.Info("stdout: " + outcome.Label)
	if outcome.Stdout == "" {
		ui.Raw("(no output)\n")
	} else {
		ui.Raw(outcome.Stdout)
	}
	ui.Info("stderr: " + outcome.Label)
	if outcome.Stderr == "" {
		ui.Raw("(no output)\n")
	} else {
		ui.Raw(outcome.Stderr)
	}
}

func formatExitCode(code int) string {
	if code < 0 {
		return "exit code unknown"
	}
	return fmt.Sprintf("exit code %d", code)
}

// recordOutcome stores the status tally; scan output itself is never
// persisted. Best effort, a history failure never aborts a scan.
func recordOutcome(tool Tool, outcome ScanOutcome) {
	var exitCode *int
	if outcome.ExitCode >= 0 {
		code := outcome.ExitCode
		exitCode = &code
	}
	_ = history.Record(tool.Binary, outcome.Label, outcome.Status.String(), exitCode)
}
