// Package commands matches incoming messages against registered commands,
// runs the matching handler and reports its failures back to the sender.
package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"scristobal/commandbot/logger"
)

const DefaultPreamble = "I know the following commands:"

type Help struct {
	// Summary is the one-liner listed by `help`. Leave it empty to keep the
	// command out of the listing.
	Summary string
	// Details answer `help <command>`.
	Details string
}

type definition struct {
	name    string
	help    Help
	kinds   map[Kind]bool
	pattern *regexp.Regexp
	handler HandlerFunc
}

// Registry is built once at startup and only read afterwards; Register must
// not be called while events are being dispatched.
type Registry struct {
	defs      []*definition
	byName    map[string]*definition
	preamble  string
	fallback  FallbackFunc
	messenger Messenger
	log       *logger.Logger
}

type Option func(*Registry)

func WithPreamble(preamble string) Option {
	return func(r *Registry) {
		r.preamble = preamble
	}
}

// WithFallback sets what happens to direct messages and mentions that match
// no command.
func WithFallback(f FallbackFunc) Option {
	return func(r *Registry) {
		r.fallback = f
	}
}

// New returns a registry holding only the built-in help command.
func New(log *logger.Logger, m Messenger, opts ...Option) *Registry {

	r := &Registry{
		byName:    make(map[string]*definition),
		preamble:  DefaultPreamble,
		messenger: m,
		log:       log,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.MustRegister("help", Help{Details: helpDetails}, r.help, DirectMessage, DirectMention)

	return r
}

// Register adds a command. name is matched case-insensitively against the
// first word of a message; kinds default to direct messages only.
func (r *Registry) Register(name string, help Help, handler HandlerFunc, kinds ...Kind) error {

	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("command name must not be empty")
	}

	if handler == nil {
		return fmt.Errorf("command %q has no handler", name)
	}

	key := strings.ToLower(name)

	if _, ok := r.byName[key]; ok {
		return &DuplicateCommandError{Name: name}
	}

	if len(kinds) == 0 {
		kinds = []Kind{DirectMessage}
	}

	def := &definition{
		name:    name,
		help:    help,
		kinds:   make(map[Kind]bool, len(kinds)),
		pattern: regexp.MustCompile(`(?is)^` + regexp.QuoteMeta(name) + `(\b.+)?$`),
		handler: handler,
	}

	for _, k := range kinds {
		def.kinds[k] = true
	}

	r.defs = append(r.defs, def)
	r.byName[key] = def

	return nil
}

// MustRegister is Register for startup code, where a clash is a bug.
func (r *Registry) MustRegister(name string, help Help, handler HandlerFunc, kinds ...Kind) {
	if err := r.Register(name, help, handler, kinds...); err != nil {
		panic(err)
	}
}

// Dispatch runs the first registered command accepting the event. Handler
// failures are logged and sent privately to the sender; Dispatch itself
// never fails.
func (r *Registry) Dispatch(ctx context.Context, ev Event) {

	for _, def := range r.defs {
		if def.kinds[ev.Kind] && def.pattern.MatchString(ev.Text) {
			r.run(ctx, def, ev)
			return
		}
	}

	switch ev.Kind {
	case DirectMessage, DirectMention, Mention:
	default:
		return
	}

	r.log.Log("message", fmt.Sprintf("Passively got a mention/message from %s", ev.Sender), logger.Verbose)

	if r.fallback == nil {
		return
	}

	if err := r.fallback(ctx, ev); err != nil {
		r.log.Log("message", fmt.Sprintf("Failed to answer %s: %s", ev.Sender, err), logger.Error)
	}
}

func (r *Registry) run(ctx context.Context, def *definition, ev Event) {

	log := r.log.Scope(def.name)

	log.Printf("Received request from %s: %s", ev.Sender, ev.Text)

	err := invoke(ctx, def.handler, ev, log, arguments(ev.Text))

	if err == nil {
		return
	}

	reason := err.Error()

	log.Force(fmt.Sprintf("%+v", err), logger.Verbose)
	log.Force("Failed for reason: "+reason, logger.Error)

	if err := r.messenger.Private(ctx, ev.Sender, reason); err != nil {
		log.Printf("Could not tell %s about the failure: %s", ev.Sender, err)
	}
}

func invoke(ctx context.Context, h HandlerFunc, ev Event, log *logger.Scope, args []string) (err error) {

	defer func() {
		if v := recover(); v != nil {
			err = newPanicError(v)
		}
	}()

	return h(ctx, ev, log, args)
}

// arguments drops the command word and splits the rest on single spaces.
// Empty strings left by trailing spaces are dropped.
func arguments(text string) []string {

	words := strings.Split(text, " ")[1:]

	for len(words) > 0 && words[len(words)-1] == "" {
		words = words[:len(words)-1]
	}

	return words
}
