// Package telegram connects the bot to the Telegram Bot API. It delivers
// messages to a dispatcher, posts replies and answers directory lookups.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"scristobal/commandbot/commands"
	"scristobal/commandbot/logger"
	"scristobal/commandbot/store"
)

// ConnectionError means the bot could not reach Telegram at startup.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to Telegram: %s", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev commands.Event)
}

type Client struct {
	b          *bot.Bot
	self       *identity
	roster     *roster
	dispatcher Dispatcher
	log        *logger.Scope
}

func New(token string, log *logger.Logger, opts ...bot.Option) (*Client, error) {

	c := &Client{
		roster: newRoster(),
		log:    log.Scope("telegram"),
	}

	opts = append([]bot.Option{bot.WithDefaultHandler(c.handle)}, opts...)

	b, err := bot.New(token, opts...)

	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	c.b = b

	return c, nil
}

// Connect fetches the bot's own identity, needed to recognise mentions.
func (c *Client) Connect(ctx context.Context) (*models.User, error) {

	me, err := c.b.GetMe(ctx)

	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	c.self = newIdentity(me)

	c.log.Printf("Connected as @%s", me.Username)

	return me, nil
}

// Listen delivers updates to d until ctx is done.
func (c *Client) Listen(ctx context.Context, d Dispatcher) error {

	if c.self == nil {
		return fmt.Errorf("listen called before connect")
	}

	c.dispatcher = d

	c.log.Print("Listening for messages...")

	c.b.Start(ctx)

	return nil
}

func (c *Client) handle(ctx context.Context, b *bot.Bot, update *models.Update) {

	defer func() {
		if r := recover(); r != nil {
			c.log.Error(fmt.Sprintf("Recovered while handling update: %v", r))
		}
	}()

	if update == nil || update.Message == nil {
		return
	}

	c.roster.observe(update.Message)

	ev, ok := classify(update.Message, c.self)

	if !ok {
		return
	}

	ev.ID = uuid.NewString()

	c.dispatcher.Dispatch(ctx, ev)
}

// OpenDirectChannel returns the private chat with user. On Telegram its id
// is the user's id.
func (c *Client) OpenDirectChannel(ctx context.Context, user string) (string, error) {

	if _, err := strconv.ParseInt(user, 10, 64); err != nil {
		return "", fmt.Errorf("invalid user id %q", user)
	}

	return user, nil
}

func (c *Client) PostMessage(ctx context.Context, channel, text string) error {

	chatID, err := strconv.ParseInt(channel, 10, 64)

	if err != nil {
		return fmt.Errorf("invalid chat id %q", channel)
	}

	_, err = c.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})

	return err
}

func (c *Client) Reply(ctx context.Context, ev commands.Event, text string) error {
	return c.PostMessage(ctx, ev.Channel, text)
}

// List returns the users or group chats seen so far.
func (c *Client) List(ctx context.Context, collection store.Collection) ([]store.Record, error) {
	return c.roster.list(collection)
}

// Info looks one user or chat up by id.
func (c *Client) Info(ctx context.Context, collection store.Collection, id string) (store.Record, error) {

	if collection != store.Users && collection != store.Channels {
		return nil, fmt.Errorf("no directory for %s", collection)
	}

	chatID, err := strconv.ParseInt(id, 10, 64)

	if err != nil {
		return nil, fmt.Errorf("invalid id %q", id)
	}

	chat, err := c.b.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})

	if err != nil {
		return nil, err
	}

	if collection == store.Users {
		return userRecord(&models.User{
			ID:        chat.ID,
			Username:  chat.Username,
			FirstName: chat.FirstName,
			LastName:  chat.LastName,
		}), nil
	}

	return channelRecord(chat.ID, chat.Title, chat.Username, string(chat.Type)), nil
}
