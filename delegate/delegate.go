// Package delegate answers messages no command matched by forwarding them
// to an OpenAI compatible chat model.
package delegate

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"scristobal/commandbot/commands"
	"scristobal/commandbot/logger"
)

const (
	DefaultModel = openai.GPT4oMini

	systemPrompt = "You are a chat bot that understands a fixed set of commands. " +
		"The user said something that is not one of them. Answer briefly and " +
		"suggest saying `help` for the list of commands."
)

type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Delegate struct {
	client  Completer
	model   string
	replier commands.Replier
	log     *logger.Scope
}

// NewClient builds the API client; an empty baseURL keeps the OpenAI one.
func NewClient(token, baseURL string) *openai.Client {

	config := openai.DefaultConfig(token)

	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return openai.NewClientWithConfig(config)
}

func New(client Completer, rep commands.Replier, log *logger.Logger, model string) *Delegate {

	if model == "" {
		model = DefaultModel
	}

	return &Delegate{
		client:  client,
		model:   model,
		replier: rep,
		log:     log.Scope("delegate"),
	}
}

// Fallback is a commands.FallbackFunc.
func (d *Delegate) Fallback(ctx context.Context, ev commands.Event) error {

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: ev.Text},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to ask %s: %w", d.model, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("%s returned no answer", d.model)
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)

	if answer == "" {
		return fmt.Errorf("%s returned an empty answer", d.model)
	}

	d.log.Verbosef("Answering %s with %d characters from %s", ev.Sender, len(answer), d.model)

	return d.replier.Reply(ctx, ev, answer)
}
