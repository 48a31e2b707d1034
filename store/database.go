package store

import (
	"context"
	"fmt"
	"regexp"

	"scristobal/commandbot/logger"
)

// Mention tokens wrap a platform id in a reserved sigil, e.g. <@42> for a
// user and <#-100123|general> for a channel.
var (
	UserMention    = regexp.MustCompile(`^<@([^>|]+)>$`)
	ChannelMention = regexp.MustCompile(`^<#([^>|]+)(?:\|[^>]*)?>$`)
)

// Database groups the collections the bot knows about. Each collection only
// exposes the operations it supports; teams have no names to search by.
//
// Nothing here serializes operations on the same id. Two events running
// Update on one record concurrently can both read the old value, and the
// last Save wins.
type Database struct {
	Users    *UserStore
	Channels *ChannelStore
	Teams    *TeamStore
}

func New(p Persistence, d Directory, log *logger.Logger) *Database {
	return &Database{
		Users:    &UserStore{named{accessor{Users, p, log}, d, UserMention}},
		Channels: &ChannelStore{named{accessor{Channels, p, log}, d, ChannelMention}},
		Teams:    &TeamStore{accessor{Teams, p, log}},
	}
}

type UserStore struct {
	named
}

type ChannelStore struct {
	named
}

type TeamStore struct {
	accessor
}

type accessor struct {
	collection Collection
	p          Persistence
	log        *logger.Logger
}

// Get returns nil, nil when nothing is stored under id. A failing backend
// yields a NotFoundError wrapping the cause.
func (a *accessor) Get(ctx context.Context, id string) (Record, error) {

	record, err := a.p.Get(ctx, a.collection, id)

	if err != nil {
		return nil, &NotFoundError{Collection: a.collection, ID: id, Err: err}
	}

	return record, nil
}

// Overwrite stores data as the whole record for id and returns what the
// backend now holds. An id already present in data is kept.
func (a *accessor) Overwrite(ctx context.Context, id string, data Record) (Record, error) {

	record := Defaults(data, Record{"id": id})

	err := a.p.Save(ctx, a.collection, record)

	if err != nil {
		return nil, fmt.Errorf("failed to overwrite %s %s: %w", a.collection, record.ID(), err)
	}

	saved, err := a.Get(ctx, record.ID())

	if err != nil {
		return nil, err
	}

	if saved == nil {
		return nil, &NotFoundError{Collection: a.collection, ID: record.ID()}
	}

	return saved, nil
}

// Update patches an existing record. The patch carries its own id; stored
// fields the patch does not mention, nested ones included, are preserved.
// The merged record is returned in the shape the backend hands back,
// without reading it again.
func (a *accessor) Update(ctx context.Context, patch Record) (Record, error) {

	id := patch.ID()

	if id == "" {
		return nil, fmt.Errorf("cannot update %s without an id", a.collection)
	}

	existing, err := a.Get(ctx, id)

	if err != nil {
		return nil, err
	}

	if existing == nil {
		err := &NotFoundError{Collection: a.collection, ID: id}
		a.log.Log("Database.update", err.Error(), logger.Error)
		return nil, err
	}

	merged := DefaultsDeep(patch, existing)

	err = a.p.Save(ctx, a.collection, merged)

	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", a.collection, id, err)
	}

	return normalize(merged)
}

type named struct {
	accessor
	dir     Directory
	mention *regexp.Regexp
}

// GetByName resolves a mention token with a single directory lookup and
// anything else by scanning the directory listing for an exact name.
func (n *named) GetByName(ctx context.Context, name string) (Record, error) {

	if m := n.mention.FindStringSubmatch(name); m != nil {

		record, err := n.dir.Info(ctx, n.collection, m[1])

		if err != nil {
			return nil, fmt.Errorf("failed to look up %s %s: %w", n.collection, m[1], err)
		}

		return record, nil
	}

	all, err := n.dir.List(ctx, n.collection)

	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", n.collection, err)
	}

	for _, record := range all {
		if record.String("name") == name {
			return record, nil
		}
	}

	return nil, nil
}
