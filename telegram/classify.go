package telegram

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-telegram/bot/models"

	"scristobal/commandbot/commands"
)

const (
	privateChat = "private"
	textMention = "text_mention"
)

// identity is the bot's own user with the patterns recognising it in group
// messages.
type identity struct {
	user     *models.User
	leading  *regexp.Regexp
	anywhere *regexp.Regexp
}

func newIdentity(me *models.User) *identity {
	name := regexp.QuoteMeta(me.Username)

	return &identity{
		user:     me,
		leading:  regexp.MustCompile(`(?i)^@` + name + `\b:?\s*`),
		anywhere: regexp.MustCompile(`(?i)@` + name + `\b`),
	}
}

// classify turns a Telegram message into an event for the dispatcher. Group
// chatter that does not address the bot is dropped.
func classify(msg *models.Message, self *identity) (commands.Event, bool) {

	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return commands.Event{}, false
	}

	ev := commands.Event{
		Sender:  strconv.FormatInt(msg.From.ID, 10),
		Channel: strconv.FormatInt(msg.Chat.ID, 10),
	}

	me := self.user

	text := rewriteMentions(msg.Text, msg.Entities, me)

	if string(msg.Chat.Type) == privateChat {

		text, ok := stripCommand(text, me.Username)

		if !ok {
			return commands.Event{}, false
		}

		ev.Kind = commands.DirectMessage
		ev.Text = text

		return ev, true
	}

	if loc := self.leading.FindStringIndex(text); loc != nil {

		text, ok := stripCommand(text[loc[1]:], me.Username)

		if !ok {
			return commands.Event{}, false
		}

		ev.Kind = commands.DirectMention
		ev.Text = text

		return ev, true
	}

	if strings.HasPrefix(text, "/") {

		text, ok := stripCommand(text, me.Username)

		if !ok {
			return commands.Event{}, false
		}

		ev.Kind = commands.DirectMention
		ev.Text = text

		return ev, true
	}

	if self.anywhere.MatchString(text) {
		ev.Kind = commands.Mention
		ev.Text = text
		return ev, true
	}

	return commands.Event{}, false
}

// stripCommand turns "/help@thisbot rest" into "help rest". Commands
// addressed to another bot are rejected.
func stripCommand(text, username string) (string, bool) {

	if !strings.HasPrefix(text, "/") {
		return text, true
	}

	text = text[1:]

	end := strings.IndexAny(text, " \n")

	if end < 0 {
		end = len(text)
	}

	word := text[:end]

	at := strings.LastIndex(word, "@")

	if at < 0 {
		return text, true
	}

	if !strings.EqualFold(word[at+1:], username) {
		return "", false
	}

	return word[:at] + text[end:], true
}

// rewriteMentions replaces text_mention entities, used for users without a
// username, with <@id> tokens. A text mention of the bot becomes @username.
// Entity offsets count UTF-16 code units.
func rewriteMentions(text string, entities []models.MessageEntity, me *models.User) string {

	units := utf16.Encode([]rune(text))

	var out []uint16
	last := 0
	changed := false

	for _, e := range entities {

		if string(e.Type) != textMention || e.User == nil {
			continue
		}

		if e.Offset < last || e.Offset+e.Length > len(units) {
			continue
		}

		token := "<@" + strconv.FormatInt(e.User.ID, 10) + ">"

		if me != nil && e.User.ID == me.ID {
			token = "@" + me.Username
		}

		out = append(out, units[last:e.Offset]...)
		out = append(out, utf16.Encode([]rune(token))...)
		last = e.Offset + e.Length
		changed = true
	}

	if !changed {
		return text
	}

	out = append(out, units[last:]...)

	return string(utf16.Decode(out))
}
