package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"idcards/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "login <login> <password>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
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

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// accountCommands выводятся в справке отдельной группой.
var accountCommands = map[string]bool{"register": true, "login": true, "logout": true, "status": true}

// FormatGlobalUsage builds a help text for all commands: account commands first,
// then card commands, each usage line followed by its description.
func FormatGlobalUsage() string {
	lines := []string{
		"ID Card CLI",
		"",
		"Usage:",
		"  idcardctl [-server URL] [-token-file PATH] <command> [args]",
		"  idcardctl help <command>",
	}
	var account, cards []Command
	for _, c := range List() {
		if accountCommands[c.Name()] {
			account = append(account, c)
		} else {
			cards = append(cards, c)
		}
	}
	lines = appendGroup(lines, "Account:", account)
	lines = appendGroup(lines, "ID cards:", cards)
	lines = append(lines,
		"",
		"Environment:",
		"  SERVER_URL   server address, same as -server",
		"  TOKEN_FILE   where the access token is kept, same as -token-file",
		"",
		"Dates are YYYY-MM-DD. Spreadsheet columns: fullName, designation, department,",
		"idNumber, issueDate, expiryDate, photoFileName.",
	)
	return strings.Join(lines, "\n") + "\n"
}

func appendGroup(lines []string, title string, cmds []Command) []string {
	if len(cmds) == 0 {
		return lines
	}
	lines = append(lines, "", title)
	for _, c := range cmds {
		lines = append(lines, "  "+c.Usage())
		if d := c.Description(); d != "" {
			lines = append(lines, "      "+d)
		}
	}
	return lines
}

// FormatCommandUsage — справка по одной команде.
func FormatCommandUsage(c Command) string {
	if d := c.Description(); d != "" {
		return fmt.Sprintf("Usage: %s\n\n%s\n", c.Usage(), d)
	}
	return fmt.Sprintf("Usage: %s\n", c.Usage())
}
