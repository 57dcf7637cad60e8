package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"BookDesk/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "borrow".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "borrow <book-id>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
	// KeeperOnly marks administration affordances hidden outside keeper mode.
	KeeperOnly() bool
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out is the shared writer for CLI output. os.Stdout by default, swapped in tests.
var Out io.Writer = os.Stdout

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns registered commands sorted by name. Keeper affordances are
// listed only when the keeper mode is on.
func List(keeperMode bool) []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		if c.KeeperOnly() && !keeperMode {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds a help text for all visible commands.
func FormatGlobalUsage(keeperMode bool) string {
	lines := []string{
		"BookDesk CLI",
		"",
		"Usage:",
		"  bookdesk [--base-url <host:port>] [-mode keeper] <command> [args]",
		"",
		"Commands:",
	}
	for _, c := range List(keeperMode) {
		lines = append(lines, fmt.Sprintf("  %-24s %s", c.Usage(), c.Description()))
	}
	return strings.Join(lines, "\n") + "\n"
}
