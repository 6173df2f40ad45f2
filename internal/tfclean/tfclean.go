// Package tfclean finds and removes terraform and terragrunt cache
// artifacts under a directory tree.
package tfclean

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"

	"github.com/weitsai/opskit/internal/ui"
)

const (
	terraformDir    = ".terraform"
	terragruntDir   = ".terragrunt-cache"
	terraformLockFn = ".terraform.lock.hcl"
)

// Target is one removable cache artifact.
type Target struct {
	Path  string
	IsDir bool
}

// Options configures a clean run.
type Options struct {
	Dir string // root to walk, empty means cwd
	Yes bool   // remove everything found without prompting
}

// FindTargets walks root and collects terraform cache directories, the
// terragrunt cache and lock files. Hidden directories other than the
// caches themselves are not descended into, and a found cache directory
// is never walked further.
func FindTargets(root string) ([]Target, error) {
	var targets []Target

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't access
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			switch d.Name() {
			case terraformDir, terragruntDir:
				targets = append(targets, Target{Path: path, IsDir: true})
				return filepath.SkipDir
			}
			// Skip other hidden directories (except the root if it's hidden)
			if path != root && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() == terraformLockFn {
			targets = append(targets, Target{Path: path})
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return targets, nil
}

// Run drives a clean: find targets, let the user narrow the set (all
// pre-selected), remove and summarize.
func Run(opts Options) error {
	root := opts.Dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		root = cwd
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	ui.Header("Terraform cache cleanup")
	ui.Info("Searching under " + root)

	targets, err := FindTargets(root)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		ui.Info("nothing to clean")
		return nil
	}

	selected := targets
	if !opts.Yes {
		selected, err = pickTargets(targets)
		if err != nil {
			return err
		}
	}
	if len(selected) == 0 {
		ui.Warn("nothing selected, nothing removed")
		return nil
	}

	removed := 0
	failed := 0
	for _, target := range selected {
		if err := os.RemoveAll(target.Path); err != nil {
			ui.ErrorItem("failed to remove "+target.Path, err.Error())
			failed++
			continue
		}
		ui.SuccessItem("removed " + target.Path)
		removed++
	}

	ui.Summary("Cleanup summary", removed, failed)
	return nil
}

func pickTargets(targets []Target) ([]Target, error) {
	options := make([]huh.Option[int], len(targets))
	for i, target := range targets {
		label := target.Path
		if target.IsDir {
			label += string(os.PathSeparator)
		}
		options[i] = huh.NewOption(label, i).Selected(true)
	}

	var picked []int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select cache artifacts to remove").
				Description("space: toggle, enter: confirm").
				Options(options...).
				Value(&picked),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection canceled: %w", err)
	}

	selected := make([]Target, 0, len(picked))
	for _, idx := range picked {
		selected = append(selected, targets[idx])
	}
	return selected, nil
}
