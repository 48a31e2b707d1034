package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scristobal/commandbot/logger"
)

func TestSQLiteRoundTrip(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	missing, err := s.Get(ctx, Users, "u1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Save(ctx, Users, Record{"id": "u1", "notes": map[string]any{"a": "b"}}))
	require.NoError(t, s.Save(ctx, Users, Record{"id": "u1", "notes": map[string]any{"c": "d"}}))
	require.NoError(t, s.Save(ctx, Teams, Record{"id": "u1", "name": "team"}))

	got, err := s.Get(ctx, Users, "u1")
	require.NoError(t, err)
	assert.Equal(t, Record{"id": "u1", "notes": map[string]any{"c": "d"}}, got)

	team, err := s.Get(ctx, Teams, "u1")
	require.NoError(t, err)
	assert.Equal(t, "team", team.String("name"))
}

func TestSQLiteRequiresID(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Save(context.Background(), Users, Record{"name": "x"}))
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")

	assert.Error(t, err)
}

func TestDatabaseOverSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	defer s.Close()

	db := New(s, &directory{}, logger.Nop())
	ctx := context.Background()

	_, err = db.Users.Overwrite(ctx, "u1", Record{"a": map[string]any{"x": 1, "y": 2}})
	require.NoError(t, err)

	merged, err := db.Users.Update(ctx, Record{"id": "u1", "a": map[string]any{"x": 9}})
	require.NoError(t, err)
	assert.Equal(t, Record{"id": "u1", "a": map[string]any{"x": 9, "y": 2.0}}, merged)
}
