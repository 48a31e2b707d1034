package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"scristobal/commandbot/logger"
)

type directory struct {
	listed  int
	looked  []string
	records map[Collection][]Record
}

func (d *directory) List(ctx context.Context, collection Collection) ([]Record, error) {
	d.listed++
	return d.records[collection], nil
}

func (d *directory) Info(ctx context.Context, collection Collection, id string) (Record, error) {
	d.looked = append(d.looked, id)

	for _, r := range d.records[collection] {
		if r.ID() == id {
			return r, nil
		}
	}

	return nil, errors.New("user_not_found")
}

type broken struct{}

func (broken) Get(ctx context.Context, collection Collection, id string) (Record, error) {
	return nil, errors.New("disk on fire")
}

func (broken) Save(ctx context.Context, collection Collection, record Record) error {
	return errors.New("disk on fire")
}

func newDatabase(t *testing.T) (*Database, *Memory, *directory, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	mem := NewMemory()
	dir := &directory{records: map[Collection][]Record{
		Users: {
			{"id": "U1", "name": "alice"},
			{"id": "U2", "name": "bob"},
		},
		Channels: {
			{"id": "-100", "name": "general"},
		},
	}}

	return New(mem, dir, logger.FromZap(zap.New(core), logger.Normal)), mem, dir, logs
}

func TestGetMissingIsNil(t *testing.T) {
	db, _, _, _ := newDatabase(t)

	record, err := db.Users.Get(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestGetBackendFailure(t *testing.T) {
	db := New(broken{}, &directory{}, logger.Nop())

	_, err := db.Teams.Get(context.Background(), "T1")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "T1", nf.ID)
	assert.EqualError(t, nf.Err, "disk on fire")
}

func TestUpdateMissing(t *testing.T) {
	db, _, _, logs := newDatabase(t)

	_, err := db.Users.Update(context.Background(), Record{"id": "u1"})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "u1 was not found", err.Error())

	var entries []observer.LoggedEntry

	for _, e := range logs.All() {
		if e.LoggerName == "Database.update" {
			entries = append(entries, e)
		}
	}

	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "u1 was not found", entries[0].Message)
}

func TestUpdateWithoutID(t *testing.T) {
	db, _, _, _ := newDatabase(t)

	_, err := db.Users.Update(context.Background(), Record{"a": 1.0})

	assert.Error(t, err)
}

func TestUpdateDeepMerge(t *testing.T) {
	db, mem, _, _ := newDatabase(t)
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, Users, Record{"id": "u1", "a": map[string]any{"x": 1.0, "y": 2.0}}))

	merged, err := db.Users.Update(ctx, Record{"id": "u1", "a": map[string]any{"x": 9.0}})
	require.NoError(t, err)

	want := Record{"id": "u1", "a": map[string]any{"x": 9.0, "y": 2.0}}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged record mismatch (-want +got):\n%s", diff)
	}

	stored, err := db.Users.Get(ctx, "u1")
	require.NoError(t, err)

	if diff := cmp.Diff(want, stored); diff != "" {
		t.Fatalf("stored record mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateReturnsStoredShape(t *testing.T) {
	db, mem, _, _ := newDatabase(t)
	ctx := context.Background()

	require.NoError(t, mem.Save(ctx, Users, Record{"id": "u1", "notes": map[string]any{}}))

	merged, err := db.Users.Update(ctx, Record{"id": "u1", "count": 1, "notes": Record{"k": "v"}})
	require.NoError(t, err)

	stored, err := db.Users.Get(ctx, "u1")
	require.NoError(t, err)

	if diff := cmp.Diff(stored, merged); diff != "" {
		t.Fatalf("update result differs from stored record (-stored +merged):\n%s", diff)
	}

	assert.Equal(t, 1.0, merged["count"])
}

func TestCollectionsKeepTheirTags(t *testing.T) {
	db, mem, _, _ := newDatabase(t)
	ctx := context.Background()

	_, err := db.Users.Overwrite(ctx, "x", Record{"kind": "user"})
	require.NoError(t, err)
	_, err = db.Channels.Overwrite(ctx, "x", Record{"kind": "channel"})
	require.NoError(t, err)
	_, err = db.Teams.Overwrite(ctx, "x", Record{"kind": "team"})
	require.NoError(t, err)

	for collection, want := range map[Collection]string{Users: "user", Channels: "channel", Teams: "team"} {
		record, err := mem.Get(ctx, collection, "x")
		require.NoError(t, err)
		assert.Equal(t, want, record.String("kind"), collection)
	}
}

func TestOverwrite(t *testing.T) {
	db, _, _, _ := newDatabase(t)
	ctx := context.Background()

	saved, err := db.Users.Overwrite(ctx, "u1", Record{"a": 1})
	require.NoError(t, err)

	fresh, err := db.Users.Get(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, Record{"id": "u1", "a": 1.0}, saved)
	assert.Equal(t, fresh, saved)
}

func TestOverwriteKeepsOwnID(t *testing.T) {
	db, _, _, _ := newDatabase(t)
	ctx := context.Background()

	saved, err := db.Channels.Overwrite(ctx, "c1", Record{"id": "c2", "topic": "x"})
	require.NoError(t, err)
	assert.Equal(t, "c2", saved.ID())

	missing, err := db.Channels.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOverwriteBackendFailure(t *testing.T) {
	db := New(broken{}, &directory{}, logger.Nop())

	_, err := db.Teams.Overwrite(context.Background(), "T1", Record{})

	assert.ErrorContains(t, err, "disk on fire")
}

func TestGetByNameMention(t *testing.T) {
	db, _, dir, _ := newDatabase(t)

	record, err := db.Users.GetByName(context.Background(), "<@U2>")

	require.NoError(t, err)
	assert.Equal(t, "bob", record.String("name"))
	assert.Equal(t, []string{"U2"}, dir.looked)
	assert.Equal(t, 0, dir.listed)
}

func TestGetByNameChannelMention(t *testing.T) {
	db, _, dir, _ := newDatabase(t)

	record, err := db.Channels.GetByName(context.Background(), "<#-100|general>")

	require.NoError(t, err)
	assert.Equal(t, "general", record.String("name"))
	assert.Equal(t, []string{"-100"}, dir.looked)
}

func TestGetByNameScan(t *testing.T) {
	db, _, dir, _ := newDatabase(t)
	ctx := context.Background()

	record, err := db.Users.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "U1", record.ID())

	record, err = db.Users.GetByName(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, record)

	assert.Equal(t, 2, dir.listed)
	assert.Empty(t, dir.looked)
}

func TestGetByNameLookupFailure(t *testing.T) {
	db, _, _, _ := newDatabase(t)

	_, err := db.Users.GetByName(context.Background(), "<@U9>")

	assert.ErrorContains(t, err, "user_not_found")
}
