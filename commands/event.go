package commands

import (
	"context"

	"scristobal/commandbot/logger"
)

// Kind is how a message reached the bot.
type Kind string

const (
	DirectMessage Kind = "direct_message"
	DirectMention Kind = "direct_mention"
	Mention       Kind = "mention"
)

// Event is one received message, already stripped of any leading mention
// of the bot.
type Event struct {
	ID      string
	Sender  string
	Channel string
	Text    string
	Kind    Kind
}

// HandlerFunc runs a command. args are the space separated words that
// followed the command name; checking how many there are is up to the
// handler (see RequireArgs).
type HandlerFunc func(ctx context.Context, ev Event, log *logger.Scope, args []string) error

// FallbackFunc handles events that matched no command.
type FallbackFunc func(ctx context.Context, ev Event) error

type Messenger interface {
	Private(ctx context.Context, user, text string) error
}

// Replier answers in the channel the event came from.
type Replier interface {
	Reply(ctx context.Context, ev Event, text string) error
}
