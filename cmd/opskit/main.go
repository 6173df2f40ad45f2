package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/weitsai/opskit/internal/completions"
	"github.com/weitsai/opskit/internal/config"
	"github.com/weitsai/opskit/internal/db"
	"github.com/weitsai/opskit/internal/history"
	"github.com/weitsai/opskit/internal/secscan"
	"github.com/weitsai/opskit/internal/selfupdate"
	"github.com/weitsai/opskit/internal/tfclean"
	"github.com/weitsai/opskit/internal/toolup"
	"github.com/weitsai/opskit/internal/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

const usage = `opskit - Personal DevOps toolbox

Usage:
  opskit                        Interactive menu
  opskit scan [path] [--yes]    Run security scanners against a git repository
  opskit tools                  List scan tools and their install status
  opskit install [tool...]      Install scan tools without scanning
  opskit history [n]            Show the n most recent scan runs (default 20)
  opskit upgrade [--yes]        Upgrade AI assistant CLIs (npm/pnpm globals)
  opskit clean [path] [--yes]   Remove terraform/terragrunt caches
  opskit self-update            Update opskit to the latest release
  opskit completions <shell>    Generate shell completions (bash/zsh/fish)
  opskit debug                  Show debug information
  opskit help                   Show this help message
  opskit version                Show version information

Scanning:
  'opskit scan' locates the enclosing git repository, builds an isolated
  snapshot of the tracked-and-not-ignored files, offers to install any
  missing scanners, then runs each scanner against the full git history
  and the snapshot. Exit code 0 means clean, 1 means findings, anything
  else means the scanner itself failed.

Configuration:
  ~/.config/opskit/config.yaml with github_token, install_dir and
  npm_client keys. OPSKIT_GITHUB_TOKEN, OPSKIT_INSTALL_DIR and
  OPSKIT_NPM_CLIENT override the file; an ambient GITHUB_TOKEN is
  used only when neither sets a token.

Examples:
  opskit scan                   Scan the current repository
  opskit scan ~/src/app --yes   Scan without prompts, installing as needed
  opskit install gitleaks       Install a single tool
  opskit history 50             Show the last 50 scan command runs
  opskit clean ~/infra          Pick terraform caches to delete under ~/infra
`

func main() {
	if err := run(); err != nil {
		if errors.Is(err, secscan.ErrCanceled) {
			fmt.Fprintln(os.Stderr, "Canceled.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// showUpdateNotice displays update notification if available
func showUpdateNotice() {
	if len(os.Args) >= 2 {
		cmd := os.Args[1]
		// Skip for commands where stdout is used for data
		if cmd == "completions" || cmd == "version" || cmd == "--version" || cmd == "-v" {
			return
		}
	}

	if os.Getenv("OPSKIT_NO_UPDATE_CHECK") != "" {
		return
	}

	notice := selfupdate.Notice(Version)
	if notice != "" {
		fmt.Fprintln(os.Stderr, "\n! "+notice)
	}
}

func run() error {
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = db.Close() }()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Show update notice at the end (only for interactive commands)
	defer showUpdateNotice()

	if len(os.Args) < 2 {
		return runMenu(cfg)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "scan":
		return handleScan(cfg, args)
	case "tools":
		return handleTools()
	case "install":
		return handleInstall(cfg, args)
	case "history":
		return handleHistory(args)
	case "upgrade":
		return handleUpgrade(cfg, args)
	case "clean":
		return handleClean(args)
	case "self-update":
		return selfupdate.Apply(Version)
	case "completions":
		return handleCompletions(args)
	case "debug":
		return handleDebug(cfg)
	case "help", "--help", "-h":
		fmt.Print(usage)
		return nil
	case "version", "--version", "-v":
		fmt.Printf("opskit version %s\n", Version)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fmt.Print(usage)
		return nil
	}
}

// parseDirAndYes splits positional args into an optional directory and
// the --yes flag, in any order.
func parseDirAndYes(args []string) (string, bool) {
	dir := ""
	yes := false
	for _, arg := range args {
		if arg == "--yes" || arg == "-y" {
			yes = true
			continue
		}
		if dir == "" {
			dir = arg
		}
	}
	return dir, yes
}

func handleScan(cfg config.Config, args []string) error {
	dir, yes := parseDirAndYes(args)
	return secscan.Run(secscan.Options{Dir: dir, Yes: yes, Config: cfg})
}

func handleTools() error {
	ui.Header("Scan tools")
	for _, tool := range secscan.Catalog() {
		if path, ok := secscan.ResolveTool(tool); ok {
			ui.SuccessItem(tool.Name + " (" + path + ")")
		} else {
			ui.ErrorItem(tool.Name+" not installed", "run 'opskit install "+tool.Binary+"'")
		}
	}
	return nil
}

func handleInstall(cfg config.Config, args []string) error {
	catalog := secscan.Catalog()

	var tools []secscan.Tool
	if len(args) == 0 {
		tools = catalog
	} else {
		byBinary := make(map[string]secscan.Tool, len(catalog))
		for _, tool := range catalog {
			byBinary[tool.Binary] = tool
		}
		for _, name := range args {
			tool, ok := byBinary[strings.ToLower(name)]
			if !ok {
				return fmt.Errorf("unknown tool: %s (see 'opskit tools')", name)
			}
			tools = append(tools, tool)
		}
	}

	ui.Header("Install scan tools")
	installer := secscan.Installer{Config: cfg}
	succeeded := 0
	failed := 0

	for _, tool := range tools {
		outcome := installer.EnsureInstalled(tool)
		switch outcome.State {
		case secscan.AlreadyInstalled:
			ui.SuccessItem(tool.Name + " already installed (" + outcome.Path + ")")
		case secscan.Installed:
			ui.SuccessItem(tool.Name + " installed (" + outcome.Path + ")")
			succeeded++
		default:
			ui.ErrorItem(tool.Name+" could not be installed", strings.Join(outcome.Errors, "; "))
			failed++
		}
	}

	if succeeded > 0 || failed > 0 {
		ui.Summary("Install summary", succeeded, failed)
	}
	return nil
}

func handleHistory(args []string) error {
	limit := 20
	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid limit: %s", args[0])
		}
		limit = n
	}

	entries, err := history.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No scan runs recorded yet. Run 'opskit scan' first.")
		return nil
	}

	ui.Header("Recent scan runs")
	for _, entry := range entries {
		code := "-"
		if entry.ExitCode.Valid {
			code = strconv.FormatInt(entry.ExitCode.Int64, 10)
		}
		fmt.Printf("  %s  %-8s  exit %-3s  %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"), entry.Status, code, entry.Label)
	}
	fmt.Printf("\nTotal: %d run(s)\n", len(entries))
	return nil
}

func handleUpgrade(cfg config.Config, args []string) error {
	_, yes := parseDirAndYes(args)
	return toolup.Run(toolup.Options{Yes: yes, Config: cfg})
}

func handleClean(args []string) error {
	dir, yes := parseDirAndYes(args)
	return tfclean.Run(tfclean.Options{Dir: dir, Yes: yes})
}

func handleCompletions(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: opskit completions <shell>\nSupported shells: bash, zsh, fish")
	}

	script, err := completions.Generate(args[0])
	if err != nil {
		return err
	}

	fmt.Print(script)
	return nil
}

func handleDebug(cfg config.Config) error {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".config", "opskit", "opskit.db")

	fmt.Println("opskit Debug Information")
	fmt.Println("========================")
	fmt.Printf("Version:     %s\n", Version)
	fmt.Printf("OS/Arch:     %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("Go version:  %s\n", runtime.Version())
	fmt.Printf("Database:    %s\n", dbPath)

	if info, err := os.Stat(dbPath); err == nil {
		fmt.Printf("DB size:     %d bytes\n", info.Size())
	} else {
		fmt.Printf("DB size:     (not found)\n")
	}

	if path, err := config.Path(); err == nil {
		fmt.Printf("Config:      %s\n", path)
	}
	if cfg.GitHubToken != "" {
		fmt.Printf("GitHub auth: configured\n")
	} else {
		fmt.Printf("GitHub auth: anonymous\n")
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "(unknown)"
	}
	fmt.Printf("Shell:       %s\n", shell)

	fmt.Printf("\nScan tools:\n")
	for _, tool := range secscan.Catalog() {
		if path, ok := secscan.ResolveTool(tool); ok {
			fmt.Printf("  %-12s %s\n", tool.Binary, path)
		} else {
			fmt.Printf("  %-12s (not installed)\n", tool.Binary)
		}
	}

	return nil
}

// menuEntry ties a menu label to its handler and usage-count key.
type menuEntry struct {
	key   string
	label string
	run   func() error
}

// runMenu shows the interactive feature menu in a loop, most-used
// commands first, until the user exits.
func runMenu(cfg config.Config) error {
	entries := []menuEntry{
		{"scan", "Security scan", func() error { return handleScan(cfg, nil) }},
		{"install", "Install scan tools", func() error { return handleInstall(cfg, nil) }},
		{"upgrade", "Upgrade AI assistant CLIs", func() error { return handleUpgrade(cfg, nil) }},
		{"clean", "Clean terraform caches", func() error { return handleClean(nil) }},
		{"history", "Show scan history", func() error { return handleHistory(nil) }},
		{"self-update", "Update opskit", func() error { return selfupdate.Apply(Version) }},
	}

	for {
		counts, err := history.UsageCounts()
		if err != nil {
			counts = map[string]int{}
		}

		ordered := make([]menuEntry, len(entries))
		copy(ordered, entries)
		sort.SliceStable(ordered, func(i, j int) bool {
			return counts[ordered[i].key] > counts[ordered[j].key]
		})

		options := make([]huh.Option[string], 0, len(ordered)+1)
		for _, entry := range ordered {
			options = append(options, huh.NewOption(entry.label, entry.key))
		}
		options = append(options, huh.NewOption("Exit", "exit"))

		var choice string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("opskit " + Version).
					Options(options...).
					Value(&choice),
			),
		)
		if err := form.Run(); err != nil {
			return nil
		}
		if choice == "exit" {
			return nil
		}

		_ = history.IncrementUsage(choice)

		for _, entry := range entries {
			if entry.key != choice {
				continue
			}
			if err := entry.run(); err != nil {
				if errors.Is(err, secscan.ErrCanceled) {
					ui.Warn("canceled")
					break
				}
				ui.ErrorItem("command failed", err.Error())
			}
			break
		}
		fmt.Println()
	}
}
