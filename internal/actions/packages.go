package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/atomikpanda/provision/internal/step"
)

// PackagesAction installs packages with a system package manager in a single
// invocation, optionally refreshing the package index first.
type PackagesAction struct {
	Manager  string // e.g. "apt", "brew", "dnf"
	Packages []string
	Update   bool
	Shell    Commander
}

// NewPackagesAction validates manager and returns the action.
func NewPackagesAction(manager string, packages []string, update bool, sh Commander) (*PackagesAction, error) {
	if _, err := installArgs(manager, packages); err != nil {
		return nil, err
	}
	return &PackagesAction{Manager: manager, Packages: packages, Update: update, Shell: sh}, nil
}

func (a *PackagesAction) Describe() string {
	return fmt.Sprintf("install %d package(s) via %s: %s", len(a.Packages), a.Manager, strings.Join(a.Packages, ", "))
}

// Commands returns the shell command lines the action will run.
func (a *PackagesAction) Commands() ([]string, error) {
	install, err := installArgs(a.Manager, a.Packages)
	if err != nil {
		return nil, err
	}
	var cmds []string
	if a.Update {
		if upd := updateArgs(a.Manager); upd != nil {
			cmds = append(cmds, quoteArgs(upd))
		}
	}
	return append(cmds, quoteArgs(install)), nil
}

func (a *PackagesAction) Perform(ctx context.Context) step.Outcome {
	cmds, err := a.Commands()
	if err != nil {
		return step.FromError(err)
	}
	for _, c := range cmds {
		if ok, msg := a.Shell.Execute(ctx, c, true); !ok {
			if msg == "" {
				msg = fmt.Sprintf("%s exited non-zero", c)
			}
			return step.Failed(msg)
		}
	}
	return step.Succeeded()
}

// installArgs returns the command + arguments needed to install pkgs with the given manager.
func installArgs(manager string, pkgs []string) ([]string, error) {
	var base []string
	switch manager {
	case "brew":
		base = []string{"brew", "install"}
	case "brew-cask":
		base = []string{"brew", "install", "--cask"}
	case "mas":
		base = []string{"mas", "install"}
	case "winget":
		base = []string{"winget", "install", "-e", "--accept-source-agreements"}
	case "choco":
		base = []string{"choco", "install", "-y"}
	case "scoop":
		base = []string{"scoop", "install"}
	case "apt", "apt-get":
		base = []string{"sudo", "apt-get", "install", "-y"}
	case "dnf":
		base = []string{"sudo", "dnf", "install", "-y"}
	case "yum":
		base = []string{"sudo", "yum", "install", "-y"}
	case "pacman":
		base = []string{"sudo", "pacman", "-S", "--noconfirm", "--needed"}
	case "snap":
		base = []string{"sudo", "snap", "install"}
	case "flatpak":
		base = []string{"flatpak", "install", "-y"}
	case "nix":
		base = []string{"nix-env", "-iA"}
	default:
		return nil, fmt.Errorf("unknown package manager: %q", manager)
	}
	return append(base, pkgs...), nil
}

// updateArgs returns the index refresh command for manager, or nil when the
// manager has none.
func updateArgs(manager string) []string {
	switch manager {
	case "apt", "apt-get":
		return []string{"sudo", "apt-get", "update"}
	case "dnf":
		return []string{"sudo", "dnf", "makecache"}
	case "yum":
		return []string{"sudo", "yum", "makecache"}
	case "pacman":
		return []string{"sudo", "pacman", "-Sy"}
	case "brew", "brew-cask":
		return []string{"brew", "update"}
	default:
		return nil
	}
}
