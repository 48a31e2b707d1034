package telegram

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/go-telegram/bot/models"

	"scristobal/commandbot/store"
)

// roster remembers the users and group chats seen in updates. Telegram has
// no endpoint listing them, so this is what the directory scans by name.
type roster struct {
	mut   sync.RWMutex
	order map[store.Collection][]string
	byID  map[store.Collection]map[string]store.Record
}

func newRoster() *roster {
	return &roster{
		order: make(map[store.Collection][]string),
		byID:  make(map[store.Collection]map[string]store.Record),
	}
}

func (r *roster) observe(msg *models.Message) {

	if msg == nil {
		return
	}

	if msg.From != nil {
		r.put(store.Users, userRecord(msg.From))
	}

	if string(msg.Chat.Type) != privateChat {
		r.put(store.Channels, channelRecord(msg.Chat.ID, msg.Chat.Title, msg.Chat.Username, string(msg.Chat.Type)))
	}
}

func (r *roster) put(collection store.Collection, record store.Record) {

	r.mut.Lock()
	defer r.mut.Unlock()

	id := record.ID()

	if r.byID[collection] == nil {
		r.byID[collection] = make(map[string]store.Record)
	}

	if _, ok := r.byID[collection][id]; !ok {
		r.order[collection] = append(r.order[collection], id)
	}

	r.byID[collection][id] = record
}

func (r *roster) list(collection store.Collection) ([]store.Record, error) {

	if collection != store.Users && collection != store.Channels {
		return nil, fmt.Errorf("no directory for %s", collection)
	}

	r.mut.RLock()
	defer r.mut.RUnlock()

	records := make([]store.Record, 0, len(r.order[collection]))

	for _, id := range r.order[collection] {
		records = append(records, r.byID[collection][id])
	}

	return records, nil
}

func userRecord(u *models.User) store.Record {

	name := u.Username

	if name == "" {
		name = u.FirstName
	}

	return store.Record{
		"id":         strconv.FormatInt(u.ID, 10),
		"name":       name,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_bot":     u.IsBot,
	}
}

func channelRecord(id int64, title, username, kind string) store.Record {

	name := title

	if name == "" {
		name = username
	}

	return store.Record{
		"id":   strconv.FormatInt(id, 10),
		"name": name,
		"type": kind,
	}
}
