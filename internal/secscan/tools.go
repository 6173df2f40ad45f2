package secscan

import "strings"

// Shell one-liners for tools without a plain package-manager path.
// Each script verifies its own prerequisites and installs into
// ~/.local/bin so no elevation is needed.
const (
	trivyCurlScript = `set -e; command -v curl >/dev/null 2>&1; mkdir -p "$HOME/.local/bin"; tmp="${TMPDIR:-/tmp}/opskit-trivy-install.$$"; curl -fsSL https://raw.githubusercontent.com/aquasecurity/trivy/main/contrib/install.sh -o "$tmp"; sh "$tmp" -b "$HOME/.local/bin"; rm -f "$tmp"`
	trivyWgetScript = `set -e; command -v wget >/dev/null 2>&1; mkdir -p "$HOME/.local/bin"; tmp="${TMPDIR:-/tmp}/opskit-trivy-install.$$"; wget -qO "$tmp" https://raw.githubusercontent.com/aquasecurity/trivy/main/contrib/install.sh; sh "$tmp" -b "$HOME/.local/bin"; rm -f "$tmp"`
	semgrepPipxAptScript = `set -e; command -v apt-get >/dev/null 2>&1; if command -v sudo >/dev/null 2>&1; then sudo apt-get install -y pipx; else apt-get install -y pipx; fi; mkdir -p "$HOME/.local/bin"; pipx install semgrep`
	semgrepVenvScript    = `set -e; command -v python3 >/dev/null 2>&1; venv_dir="$HOME/.local/share/opskit/semgrep-venv"; python3 -m venv "$venv_dir"; "$venv_dir/bin/pip" install semgrep; mkdir -p "$HOME/.local/bin"; ln -sf "$venv_dir/bin/semgrep" "$HOME/.local/bin/semgrep"`
)

// InstallStrategy is one concrete way to obtain a tool, tried in
// catalog order. Sudo strategies are skipped entirely when no sudo is
// available.
type InstallStrategy struct {
	Label   string
	Program string
	Args    []string
	Sudo    bool
}

// ScanCommand is one concrete scanner invocation, built fresh from the
// repository and snapshot paths.
type ScanCommand struct {
	Label   string
	Args    []string
	Workdir string
}

// commandTemplate holds a scan command with {repo}, {worktree} and
// {repo_url} placeholders, expanded per invocation.
type commandTemplate struct {
	scope   string
	args    []string
	workdir string
}

// Tool describes one scan tool. Descriptors are plain data: adding a
// tool means adding an entry to Catalog, not new control flow.
type Tool struct {
	Name        string // human display name
	Binary      string // executable name looked up on disk
	ReleaseRepo string // owner/name on GitHub, empty when no binary releases
	Strategies  []InstallStrategy
	templates   []commandTemplate
}

// Commands materializes the tool's scan commands against a repository
// root and a worktree snapshot root.
func (t Tool) Commands(repoRoot, worktreeRoot string) []ScanCommand {
	expand := strings.NewReplacer(
		"{repo}", repoRoot,
		"{worktree}", worktreeRoot,
		"{repo_url}", "file://"+repoRoot,
	)

	commands := make([]ScanCommand, 0, len(t.templates))
	for _, tpl := range t.templates {
		args := make([]string, len(tpl.args))
		for i, arg := range tpl.args {
			args[i] = expand.Replace(arg)
		}
		commands = append(commands, ScanCommand{
			Label:   t.Name + " (" + tpl.scope + ")",
			Args:    args,
			Workdir: expand.Replace(tpl.workdir),
		})
	}
	return commands
}

// Catalog returns the fixed tool registry in scan order. Every command
// is flagged so exit code 0 means clean, 1 means findings and anything
// else means the tool itself failed.
func Catalog() []Tool {
	return []Tool{
		{
			Name:        "Gitleaks",
			Binary:      "gitleaks",
			ReleaseRepo: "gitleaks/gitleaks",
			Strategies: []InstallStrategy{
				{Label: "brew", Program: "brew", Args: []string{"install", "gitleaks"}},
				{Label: "apt-get", Program: "apt-get", Args: []string{"install", "-y", "gitleaks"}, Sudo: true},
				{Label: "dnf", Program: "dnf", Args: []string{"install", "-y", "gitleaks"}, Sudo: true},
				{Label: "pacman", Program: "pacman", Args: []string{"-S", "--noconfirm", "gitleaks"}, Sudo: true},
				{Label: "go install", Program: "go", Args: []string{"install", "github.com/gitleaks/gitleaks/v8@latest"}},
			},
			templates: []commandTemplate{
				{
					scope:   "git history",
					args:    []string{"detect", "--source", "{repo}", "--no-banner", "--redact", "--exit-code", "1"},
					workdir: "{repo}",
				},
				{
					scope:   "worktree",
					args:    []string{"detect", "--source", "{worktree}", "--no-git", "--no-banner", "--redact", "--exit-code", "1"},
					workdir: "{worktree}",
				},
			},
		},
		{
			Name:        "TruffleHog",
			Binary:      "trufflehog",
			ReleaseRepo: "trufflesecurity/trufflehog",
			Strategies: []InstallStrategy{
				{Label: "brew", Program: "brew", Args: []string{"install", "trufflehog"}},
				{Label: "apt-get", Program: "apt-get", Args: []string{"install", "-y", "trufflehog"}, Sudo: true},
				{Label: "dnf", Program: "dnf", Args: []string{"install", "-y", "trufflehog"}, Sudo: true},
				{Label: "pacman", Program: "pacman", Args: []string{"-S", "--noconfirm", "trufflehog"}, Sudo: true},
				{Label: "go install", Program: "go", Args: []string{"install", "github.com/trufflesecurity/trufflehog@latest"}},
			},
			templates: []commandTemplate{
				{
					scope:   "git history",
					args:    []string{"git", "{repo_url}", "--fail", "--json"},
					workdir: "{repo}",
				},
				{
					scope:   "worktree",
					args:    []string{"filesystem", "{worktree}", "--fail", "--json"},
					workdir: "{worktree}",
				},
			},
		},
		{
			Name:   "Git-Secrets",
			Binary: "git-secrets",
			Strategies: []InstallStrategy{
				{Label: "brew", Program: "brew", Args: []string{"install", "git-secrets"}},
				{Label: "apt-get", Program: "apt-get", Args: []string{"install", "-y", "git-secrets"}, Sudo: true},
				{Label: "dnf", Program: "dnf", Args: []string{"install", "-y", "git-secrets"}, Sudo: true},
				{Label: "pacman", Program: "pacman", Args: []string{"-S", "--noconfirm", "git-secrets"}, Sudo: true},
			},
			templates: []commandTemplate{
				{
					scope:   "worktree",
					args:    []string{"--scan", "-r"},
					workdir: "{worktree}",
				},
				{
					scope:   "git history",
					args:    []string{"--scan-history"},
					workdir: "{repo}",
				},
			},
		},
		{
			Name:        "Trivy",
			Binary:      "trivy",
			ReleaseRepo: "aquasecurity/trivy",
			Strategies: []InstallStrategy{
				{Label: "brew", Program: "brew", Args: []string{"install", "trivy"}},
				{Label: "install.sh (curl)", Program: "sh", Args: []string{"-c", trivyCurlScript}},
				{Label: "install.sh (wget)", Program: "sh", Args: []string{"-c", trivyWgetScript}},
				{Label: "apt-get", Program: "apt-get", Args: []string{"install", "-y", "trivy"}, Sudo: true},
				{Label: "dnf", Program: "dnf", Args: []string{"install", "-y", "trivy"}, Sudo: true},
				{Label: "pacman", Program: "pacman", Args: []string{"-S", "--noconfirm", "trivy"}, Sudo: true},
				{Label: "go install", Program: "go", Args: []string{"install", "github.com/aquasecurity/trivy/cmd/trivy@latest"}},
			},
			templates: []commandTemplate{
				{
					scope:   "SCA & misconfig",
					args:    []string{"fs", "{worktree}", "--scanners", "vuln,config", "--exit-code", "1", "--no-progress"},
					workdir: "{worktree}",
				},
			},
		},
		{
			Name:   "Semgrep",
			Binary: "semgrep",
			Strategies: []InstallStrategy{
				{Label: "brew", Program: "brew", Args: []string{"install", "semgrep"}},
				{Label: "pipx", Program: "pipx", Args: []string{"install", "semgrep"}},
				{Label: "apt-get pipx", Program: "sh", Args: []string{"-c", semgrepPipxAptScript}},
				{Label: "python venv", Program: "sh", Args: []string{"-c", semgrepVenvScript}},
				{Label: "pip", Program: "pip", Args: []string{"install", "semgrep"}},
				{Label: "pip3", Program: "pip3", Args: []string{"install", "semgrep"}},
			},
			templates: []commandTemplate{
				{
					scope:   "SAST",
					args:    []string{"scan", "--config=auto", "--error", "--quiet", "{worktree}"},
					workdir: "{worktree}",
				},
			},
		},
	}
}
