// Package messenger sends private messages to users.
package messenger

import (
	"context"
	"fmt"

	"golang.org/x/exp/utf8string"

	"scristobal/commandbot/logger"
)

const (
	previewLength = 30
	omission      = "..."
)

// Transport is the part of the chat platform needed to reach one user.
type Transport interface {
	OpenDirectChannel(ctx context.Context, user string) (string, error)
	PostMessage(ctx context.Context, channel, text string) error
}

type TransportError struct {
	Op   string
	User string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s for %s: %s", e.Op, e.User, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Messenger struct {
	t   Transport
	log *logger.Scope
}

func New(t Transport, log *logger.Logger) *Messenger {
	return &Messenger{t: t, log: log.Scope("Message.private")}
}

// Private opens (or reuses) the direct channel with user and posts text
// there as the bot.
func (m *Messenger) Private(ctx context.Context, user, text string) error {

	channel, err := m.t.OpenDirectChannel(ctx, user)

	if err != nil {
		return &TransportError{Op: "open direct channel", User: user, Err: err}
	}

	m.log.Verbosef("Sending to %s: %s", user, truncate(text, previewLength))

	err = m.t.PostMessage(ctx, channel, text)

	if err != nil {
		return &TransportError{Op: "post message", User: user, Err: err}
	}

	return nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {

	u := utf8string.NewString(s)

	if u.RuneCount() <= n {
		return s
	}

	return u.Slice(0, n-len(omission)) + omission
}
