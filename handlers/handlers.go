// Package handlers holds the commands this bot answers to.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"

	"scristobal/commandbot/commands"
	"scristobal/commandbot/logger"
	"scristobal/commandbot/store"
)

// Install registers every command on r.
func Install(r *commands.Registry, db *store.Database, m commands.Messenger, rep commands.Replier, teamID string) error {

	list := []struct {
		name    string
		help    commands.Help
		handler commands.HandlerFunc
		kinds   []commands.Kind
	}{
		{"register", commands.Help{Summary: "Create your profile so I can remember things for you"}, Register(db, m), nil},
		{"remember", commands.Help{
			Summary: "Remember a note, usage `remember <key> <value>`",
			Details: "`remember <key> <value>` stores a note on your profile. Quote keys with spaces: `remember \"favorite color\" blue`.",
		}, Remember(db, m), nil},
		{"recall", commands.Help{Summary: "Show your notes, usage `recall [key]`"}, Recall(db, m), nil},
		{"forget", commands.Help{Details: "`forget <key>` removes a note from your profile."}, Forget(db, m), nil},
		{"whois", commands.Help{Summary: "Look someone up, usage `whois <name>`"}, Whois(db, m), nil},
		{"topic", commands.Help{Summary: "Show or set the topic of a group, usage `topic [text]`"}, Topic(db, rep), []commands.Kind{commands.DirectMention, commands.Mention}},
		{"about", commands.Help{Summary: "Tell you about me"}, About(db, m, teamID), []commands.Kind{commands.DirectMessage, commands.DirectMention}},
	}

	for _, c := range list {
		if err := r.Register(c.name, c.help, c.handler, c.kinds...); err != nil {
			return err
		}
	}

	return nil
}

func notRegistered(err error) error {

	var nf *store.NotFoundError

	if errors.As(err, &nf) && nf.Err == nil {
		return fmt.Errorf("%w, say `register` first", err)
	}

	return err
}

// words re-splits the arguments honouring quotes.
func words(args []string) ([]string, error) {

	parsed, err := shellwords.Parse(strings.Join(args, " "))

	if err != nil {
		return nil, fmt.Errorf("could not read your arguments: %s", err)
	}

	return parsed, nil
}

func Register(db *store.Database, m commands.Messenger) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		if err := commands.RequireArgs(args, 0, 0); err != nil {
			return err
		}

		existing, err := db.Users.Get(ctx, ev.Sender)

		if err != nil {
			return err
		}

		if existing != nil {
			return m.Private(ctx, ev.Sender, "You are already registered.")
		}

		profile := store.Record{
			"registered_at": time.Now().UTC().Format(time.RFC3339),
			"notes":         map[string]any{},
		}

		user, err := db.Users.GetByName(ctx, "<@"+ev.Sender+">")

		if err != nil {
			log.Verbosef("Could not look %s up: %s", ev.Sender, err)
		}

		if user != nil {
			profile["name"] = user.String("name")
		}

		saved, err := db.Users.Overwrite(ctx, ev.Sender, profile)

		if err != nil {
			return err
		}

		log.Printf("Registered %s", saved.ID())

		return m.Private(ctx, ev.Sender, "You are registered. Try `remember <key> <value>`.")
	}
}

func Remember(db *store.Database, m commands.Messenger) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		parsed, err := words(args)

		if err != nil {
			return err
		}

		if err := commands.RequireArgs(parsed, 2, -1); err != nil {
			return fmt.Errorf("usage `remember <key> <value>`: %w", err)
		}

		key := parsed[0]
		value := strings.Join(parsed[1:], " ")

		_, err = db.Users.Update(ctx, store.Record{
			"id":    ev.Sender,
			"notes": map[string]any{key: value},
		})

		if err != nil {
			return notRegistered(err)
		}

		return m.Private(ctx, ev.Sender, fmt.Sprintf("I will remember `%s`.", key))
	}
}

func Recall(db *store.Database, m commands.Messenger) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		parsed, err := words(args)

		if err != nil {
			return err
		}

		if err := commands.RequireArgs(parsed, 0, 1); err != nil {
			return fmt.Errorf("usage `recall [key]`: %w", err)
		}

		profile, err := db.Users.Get(ctx, ev.Sender)

		if err != nil {
			return err
		}

		if profile == nil {
			return notRegistered(&store.NotFoundError{Collection: store.Users, ID: ev.Sender})
		}

		notes := profile.Map("notes")

		if len(parsed) == 1 {

			value, ok := notes[parsed[0]]

			if !ok {
				return m.Private(ctx, ev.Sender, fmt.Sprintf("I don't remember `%s`.", parsed[0]))
			}

			return m.Private(ctx, ev.Sender, fmt.Sprintf("`%s` %v", parsed[0], value))
		}

		if len(notes) == 0 {
			return m.Private(ctx, ev.Sender, "I don't remember anything for you yet.")
		}

		var b strings.Builder

		b.WriteString("Your notes:")

		for _, key := range slices.Sorted(maps.Keys(notes)) {
			fmt.Fprintf(&b, "\n`%s` %v", key, notes[key])
		}

		return m.Private(ctx, ev.Sender, b.String())
	}
}

// Forget rewrites the whole profile: an Update would merge the removed
// note back in from the stored record.
func Forget(db *store.Database, m commands.Messenger) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		parsed, err := words(args)

		if err != nil {
			return err
		}

		if err := commands.RequireArgs(parsed, 1, 1); err != nil {
			return fmt.Errorf("usage `forget <key>`: %w", err)
		}

		profile, err := db.Users.Get(ctx, ev.Sender)

		if err != nil {
			return err
		}

		if profile == nil {
			return notRegistered(&store.NotFoundError{Collection: store.Users, ID: ev.Sender})
		}

		notes := profile.Map("notes")

		if _, ok := notes[parsed[0]]; !ok {
			return m.Private(ctx, ev.Sender, fmt.Sprintf("I don't remember `%s`.", parsed[0]))
		}

		delete(notes, parsed[0])

		_, err = db.Users.Overwrite(ctx, ev.Sender, profile)

		if err != nil {
			return err
		}

		log.Verbosef("Forgot %s for %s", parsed[0], ev.Sender)

		return m.Private(ctx, ev.Sender, fmt.Sprintf("Forgot `%s`.", parsed[0]))
	}
}

func Whois(db *store.Database, m commands.Messenger) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		if err := commands.RequireArgs(args, 1, 1); err != nil {
			return fmt.Errorf("usage `whois <name>`: %w", err)
		}

		user, err := db.Users.GetByName(ctx, args[0])

		if err != nil {
			return err
		}

		if user == nil {
			return m.Private(ctx, ev.Sender, fmt.Sprintf("I don't know anyone called %s.", args[0]))
		}

		text := fmt.Sprintf("%s has id %s", user.String("name"), user.ID())

		profile, err := db.Users.Get(ctx, user.ID())

		if err != nil {
			return err
		}

		if profile == nil {
			text += " and is not registered."
		} else {
			text += fmt.Sprintf(" and registered on %s.", profile.String("registered_at"))
		}

		return m.Private(ctx, ev.Sender, text)
	}
}

func Topic(db *store.Database, rep commands.Replier) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		channel, err := db.Channels.Get(ctx, ev.Channel)

		if err != nil {
			return err
		}

		if len(args) == 0 {

			if channel.String("topic") == "" {
				return rep.Reply(ctx, ev, "There is no topic yet.")
			}

			return rep.Reply(ctx, ev, "The topic is: "+channel.String("topic"))
		}

		topic := strings.Join(args, " ")

		if channel == nil {
			_, err = db.Channels.Overwrite(ctx, ev.Channel, store.Record{"topic": topic, "set_by": ev.Sender})
		} else {
			_, err = db.Channels.Update(ctx, store.Record{"id": ev.Channel, "topic": topic, "set_by": ev.Sender})
		}

		if err != nil {
			return err
		}

		log.Printf("%s set the topic of %s", ev.Sender, ev.Channel)

		return rep.Reply(ctx, ev, "The topic is now: "+topic)
	}
}

// About describes the bot from the team record written at startup.
func About(db *store.Database, m commands.Messenger, teamID string) commands.HandlerFunc {

	return func(ctx context.Context, ev commands.Event, log *logger.Scope, args []string) error {

		team, err := db.Teams.Get(ctx, teamID)

		if err != nil {
			return err
		}

		if team == nil {
			return &store.NotFoundError{Collection: store.Teams, ID: teamID}
		}

		return m.Private(ctx, ev.Sender, fmt.Sprintf("I am %s, up since %s. Say `help` for what I can do.",
			team.String("name"), team.String("started_at")))
	}
}
