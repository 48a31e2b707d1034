package logger

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(threshold Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core), threshold), logs
}

func TestThreshold(t *testing.T) {

	tests := []struct {
		threshold Level
		level     Level
		written   bool
	}{
		{Error, Error, true},
		{Error, Normal, false},
		{Error, Verbose, false},
		{Normal, Normal, true},
		{Normal, Verbose, false},
		{Verbose, Verbose, true},
		{Level(-1), Error, true},
	}

	for _, tt := range tests {
		l, logs := observed(tt.threshold)

		l.Log("test", "hello", tt.level)

		if tt.written {
			assert.Equal(t, 1, logs.Len(), "threshold %s level %s", tt.threshold, tt.level)
		} else {
			assert.Equal(t, 0, logs.Len(), "threshold %s level %s", tt.threshold, tt.level)
		}
	}
}

func TestLevelMapping(t *testing.T) {
	l, logs := observed(Verbose)

	l.Log("a", "e", Error)
	l.Log("a", "n", Normal)
	l.Log("a", "v", Verbose)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
}

func TestEmptyCategory(t *testing.T) {
	l, logs := observed(Normal)

	l.Log("", "something", Normal)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "log", entries[0].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "unknown", entries[1].LoggerName)
	assert.Equal(t, "something", entries[1].Message)
}

func TestEmptyCategoryReportedEvenWhenSuppressed(t *testing.T) {
	l, logs := observed(Error)

	l.Log("", "something", Verbose)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "log", logs.All()[0].LoggerName)
}

func TestEmptyMessage(t *testing.T) {
	l, logs := observed(Normal)

	l.Log("startup", "", Normal)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "log", entries[0].LoggerName)
	assert.Equal(t, "startup", entries[0].Message)
}

func TestScope(t *testing.T) {
	l, logs := observed(Normal)

	s := l.Scope("remember")
	s.Print("one")
	s.Printf("two %d", 2)
	s.Verbose("hidden")
	s.Error("three")

	entries := logs.All()
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.Equal(t, "remember", e.LoggerName)
	}

	assert.Equal(t, "two 2", entries[1].Message)
	assert.Equal(t, "remember", s.Category())
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	l := New(Normal, &buf)
	l.Log("Message.private", "Sending to 42: hi", Normal)

	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\S+ Message\.private: Sending to 42: hi\n$`)

	if !re.MatchString(buf.String()) {
		t.Fatalf("Got = %q, want match of %s", buf.String(), re)
	}
}

func TestForce(t *testing.T) {
	l, logs := observed(Error)

	l.Scope("explode").Force("details", Verbose)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "explode", entries[0].LoggerName)
}
