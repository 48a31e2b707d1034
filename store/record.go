// Package store mediates access to the bot's users, channels and teams. The
// records themselves live in a Persistence backend; names are resolved
// through a Directory provided by the chat platform.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

type Collection string

const (
	Users    Collection = "users"
	Channels Collection = "channels"
	Teams    Collection = "teams"
)

// Record is a stored entity. The "id" field is its only addressing key.
type Record map[string]any

func (r Record) ID() string {
	v, ok := r["id"]

	if !ok || v == nil {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Map returns the nested record under key, or nil.
func (r Record) Map(key string) Record {
	switch m := r[key].(type) {
	case Record:
		return m
	case map[string]any:
		return Record(m)
	}
	return nil
}

// normalize round-trips a record through JSON, the same shape every
// backend hands back.
func normalize(r Record) (Record, error) {

	data, err := json.Marshal(r)

	if err != nil {
		return nil, err
	}

	var out Record

	err = json.Unmarshal(data, &out)

	return out, err
}

// Persistence is the key-value collaborator that actually stores records.
// Get returns nil, nil when nothing is stored under id.
type Persistence interface {
	Get(ctx context.Context, collection Collection, id string) (Record, error)
	Save(ctx context.Context, collection Collection, record Record) error
}

// Directory is the chat platform's own view of users and channels.
type Directory interface {
	List(ctx context.Context, collection Collection) ([]Record, error)
	Info(ctx context.Context, collection Collection, id string) (Record, error)
}
