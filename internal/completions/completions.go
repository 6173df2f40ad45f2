package completions

import (
	"fmt"
	"strings"
)

// Bash generates bash completion script
func Bash() string {
	return `# opskit bash completion script
# Add to ~/.bashrc: eval "$(opskit completions bash)"

_opskit_completions() {
    local cur prev commands
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    commands="scan tools install history upgrade clean self-update completions debug help version"

    case "${prev}" in
        opskit)
            COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
            return 0
            ;;
        scan|clean)
            # Complete with directories, plus the skip-prompts flag
            COMPREPLY=( $(compgen -d -- "${cur}") $(compgen -W "--yes" -- "${cur}") )
            return 0
            ;;
        install)
            COMPREPLY=( $(compgen -W "gitleaks trufflehog git-secrets trivy semgrep" -- "${cur}") )
            return 0
            ;;
        upgrade)
            COMPREPLY=( $(compgen -W "--yes" -- "${cur}") )
            return 0
            ;;
        completions)
            COMPREPLY=( $(compgen -W "bash zsh fish" -- "${cur}") )
            return 0
            ;;
        *)
            ;;
    esac

    # Default to commands if nothing else matches
    COMPREPLY=( $(compgen -W "${commands}" -- "${cur}") )
}

complete -F _opskit_completions opskit
`
}

// Zsh generates zsh completion script
func Zsh() string {
	return `#compdef opskit
# opskit zsh completion script
# Add to ~/.zshrc: eval "$(opskit completions zsh)"

_opskit() {
    local -a commands

    commands=(
        'scan:Run security scanners against a repository'
        'tools:List scan tools and their install status'
        'install:Install scan tools without scanning'
        'history:Show recent scan runs'
        'upgrade:Upgrade AI assistant CLIs'
        'clean:Remove terraform/terragrunt caches'
        'self-update:Update opskit to the latest release'
        'completions:Generate shell completions'
        'debug:Show debug information'
        'help:Show help'
        'version:Show version'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case $state in
        command)
            _describe -t commands 'opskit commands' commands
            ;;
        args)
            case $words[2] in
                scan|clean)
                    _alternative 'dirs:directory:_files -/' 'flags:flag:(--yes)'
                    ;;
                install)
                    _values 'tools' 'gitleaks' 'trufflehog' 'git-secrets' 'trivy' 'semgrep'
                    ;;
                upgrade)
                    _values 'flags' '--yes[skip confirmation]'
                    ;;
                completions)
                    _values 'shells' 'bash' 'zsh' 'fish'
                    ;;
            esac
            ;;
    esac
}

_opskit "$@"
`
}

// Fish generates fish completion script
func Fish() string {
	return `# opskit fish completion script
# Add to ~/.config/fish/completions/opskit.fish

# Disable file completion by default
complete -c opskit -f

# Commands
complete -c opskit -n "__fish_use_subcommand" -a "scan" -d "Run security scanners against a repository"
complete -c opskit -n "__fish_use_subcommand" -a "tools" -d "List scan tools and their install status"
complete -c opskit -n "__fish_use_subcommand" -a "install" -d "Install scan tools without scanning"
complete -c opskit -n "__fish_use_subcommand" -a "history" -d "Show recent scan runs"
complete -c opskit -n "__fish_use_subcommand" -a "upgrade" -d "Upgrade AI assistant CLIs"
complete -c opskit -n "__fish_use_subcommand" -a "clean" -d "Remove terraform/terragrunt caches"
complete -c opskit -n "__fish_use_subcommand" -a "self-update" -d "Update opskit to the latest release"
complete -c opskit -n "__fish_use_subcommand" -a "completions" -d "Generate shell completions"
complete -c opskit -n "__fish_use_subcommand" -a "debug" -d "Show debug information"
complete -c opskit -n "__fish_use_subcommand" -a "help" -d "Show help"
complete -c opskit -n "__fish_use_subcommand" -a "version" -d "Show version"

# Directory completion for scan and clean
complete -c opskit -n "__fish_seen_subcommand_from scan clean" -a "(__fish_complete_directories)"

# Tool names for install
complete -c opskit -n "__fish_seen_subcommand_from install" -a "gitleaks trufflehog git-secrets trivy semgrep" -d "Tool"

# Flags
complete -c opskit -n "__fish_seen_subcommand_from scan clean upgrade" -l yes -d "Skip prompts"

# Shell completion for completions command
complete -c opskit -n "__fish_seen_subcommand_from completions" -a "bash zsh fish" -d "Shell"
`
}

// Generate returns the completion script for the given shell
func Generate(shell string) (string, error) {
	switch strings.ToLower(shell) {
	case "bash":
		return Bash(), nil
	case "zsh":
		return Zsh(), nil
	case "fish":
		return Fish(), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", shell)
	}
}
