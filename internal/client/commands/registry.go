// FILE: internal/client/commands/registry.go
package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"arena/internal/client/api"
	"arena/internal/client/display"
	"arena/internal/core"
)

// Session is the REPL state the handlers read and update
type Session interface {
	GetAPIBaseURL() string
	SetAPIBaseURL(string)
	GetCurrentMatch() string
	SetCurrentMatch(string)
	GetClient() *api.Client
	IsVerbose() bool
	GetMatchState() *core.MatchResponse
	SetMatchState(*core.MatchResponse)
	GetBoard() *core.BoardState
	SetBoard(*core.BoardState)
	NextSeed() uint64
}

// Help groups, listed in this order
const (
	groupMatch   = "Match"
	groupService = "Service"
	groupUtility = "Utility"
)

var groupOrder = []string{groupMatch, groupService, groupUtility}

// Command is one REPL verb
type Command struct {
	Name        string
	Group       string
	ShortName   string
	Description string
	Usage       string
	Handler     func(Session, []string) error
}

// Registry resolves input lines to commands by name or short name
type Registry struct {
	session  Session
	out      io.Writer
	commands map[string]*Command
	ordered  []*Command // registration order, one entry per command
}

func NewRegistry(session Session) *Registry {
	return newRegistry(session, os.Stdout)
}

func newRegistry(session Session, out io.Writer) *Registry {
	r := &Registry{
		session:  session,
		out:      out,
		commands: make(map[string]*Command),
	}

	r.registerMatchCommands()
	r.registerDebugCommands()
	r.Register(&Command{
		Name:        "help",
		Group:       groupUtility,
		ShortName:   "?",
		Description: "Show commands, or one command's usage",
		Usage:       "help [command]",
		Handler:     r.helpHandler,
	})

	return r
}

// Register adds cmd; a later command with the same name or short name wins
func (r *Registry) Register(cmd *Command) {
	if prev, ok := r.commands[cmd.Name]; ok {
		r.ordered = slices.DeleteFunc(r.ordered, func(c *Command) bool { return c == prev })
	}
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
	r.ordered = append(r.ordered, cmd)
}

// Lookup finds a command by name or short name
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Completer offers every command name, with help completing to command names
func (r *Registry) Completer() *readline.PrefixCompleter {
	names := make([]readline.PrefixCompleterInterface, 0, len(r.ordered))
	items := make([]readline.PrefixCompleterInterface, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		names = append(names, readline.PcItem(cmd.Name))
	}
	for _, cmd := range r.ordered {
		if cmd.Name == "help" {
			items = append(items, readline.PcItem(cmd.Name, names...))
			continue
		}
		items = append(items, readline.PcItem(cmd.Name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Execute runs one input line. Handler errors are printed, not returned.
func (r *Registry) Execute(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd, ok := r.Lookup(parts[0])
	if !ok {
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintln(r.out, "Type 'help' for available commands")
		return
	}

	r.session.GetClient().SetVerbose(r.session.IsVerbose())

	if err := cmd.Handler(r.session, parts[1:]); err != nil {
		fmt.Fprintf(r.out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
}

func (r *Registry) helpHandler(_ Session, args []string) error {
	if len(args) > 0 {
		cmd, ok := r.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(r.out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(r.out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(r.out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(r.out, "\n%sArena client commands%s\n", display.Cyan, display.Reset)
	for _, group := range groupOrder {
		fmt.Fprintf(r.out, "\n%s%s:%s\n", display.Yellow, group, display.Reset)
		for _, cmd := range r.ordered {
			if cmd.Group != group {
				continue
			}
			short := "   "
			if cmd.ShortName != "" {
				short = "[" + cmd.ShortName + "]"
			}
			fmt.Fprintf(r.out, "  %s %-14s %s\n", short, cmd.Name, cmd.Description)
		}
	}

	fmt.Fprintln(r.out, "\nType 'help <command>' for usage; append '-v' for request/response dumps")
	return nil
}
