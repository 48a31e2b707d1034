package commands

import "context"

const DefaultFallbackText = "I don't understand. Say `help` to me for a list of commands."

// ReplyFallback answers unmatched messages with a fixed text in the same
// channel.
func ReplyFallback(rep Replier, text string) FallbackFunc {

	if text == "" {
		text = DefaultFallbackText
	}

	return func(ctx context.Context, ev Event) error {
		return rep.Reply(ctx, ev, text)
	}
}
