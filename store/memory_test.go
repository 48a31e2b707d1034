package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryNormalizes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, Channels, Record{"id": "c1", "count": 3, "nested": Record{"k": "v"}}))

	got, err := m.Get(ctx, Channels, "c1")
	require.NoError(t, err)

	assert.Equal(t, Record{"id": "c1", "count": 3.0, "nested": map[string]any{"k": "v"}}, got)
	assert.Equal(t, "v", got.Map("nested").String("k"))
}

func TestMemoryCollectionsAreSeparate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, Users, Record{"id": "x"}))

	got, err := m.Get(ctx, Teams, "x")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCanceled(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Get(ctx, Users, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "", Record{}.ID())
	assert.Equal(t, "42", Record{"id": 42}.ID())
	assert.Equal(t, "u1", Record{"id": "u1"}.ID())
}
