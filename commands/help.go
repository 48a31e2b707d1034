package commands

import (
	"context"
	"fmt"
	"strings"

	"scristobal/commandbot/logger"
)

const helpDetails = "Say `help` for the list of commands, or `help <command>` to learn more about one of them."

type HelpEntry struct {
	Name string
	Help
}

// HelpIndex lists every command in registration order, hidden ones
// included.
func (r *Registry) HelpIndex() []HelpEntry {

	entries := make([]HelpEntry, 0, len(r.defs))

	for _, def := range r.defs {
		entries = append(entries, HelpEntry{Name: def.name, Help: def.help})
	}

	return entries
}

// HelpText is the preamble followed by one line per command with a summary.
func (r *Registry) HelpText() string {

	var b strings.Builder

	b.WriteString(r.preamble)

	for _, def := range r.defs {
		if def.help.Summary == "" {
			continue
		}
		fmt.Fprintf(&b, "\n`%s` %s", def.name, def.help.Summary)
	}

	return b.String()
}

// Describe answers `help <name>`: the details, else the summary.
func (r *Registry) Describe(name string) (string, bool) {

	def, ok := r.byName[strings.ToLower(name)]

	if !ok {
		return "", false
	}

	if def.help.Details != "" {
		return def.help.Details, true
	}

	if def.help.Summary != "" {
		return def.help.Summary, true
	}

	return "", false
}

func (r *Registry) help(ctx context.Context, ev Event, log *logger.Scope, args []string) error {

	if len(args) == 0 {
		return r.messenger.Private(ctx, ev.Sender, r.HelpText())
	}

	text, ok := r.Describe(args[0])

	if !ok {
		text = fmt.Sprintf("I don't know a command called `%s`.", args[0])
	}

	return r.messenger.Private(ctx, ev.Sender, text)
}
