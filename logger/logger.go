// Package logger writes leveled, categorized console lines of the form
// "<timestamp> <category>: <message>".
package logger

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

// Levels in increasing verbosity. A line is written when its level is at or
// below the configured threshold. Error is always written.
const (
	Error Level = iota
	Normal
	Verbose
)

func (lv Level) String() string {
	switch lv {
	case Error:
		return "error"
	case Normal:
		return "normal"
	case Verbose:
		return "verbose"
	}

	return fmt.Sprintf("level(%d)", int(lv))
}

func (lv Level) zap() zapcore.Level {
	switch lv {
	case Error:
		return zapcore.ErrorLevel
	case Normal:
		return zapcore.InfoLevel
	}

	return zapcore.DebugLevel
}

type Logger struct {
	z         *zap.Logger
	threshold Level
}

// New builds the process logger writing to w.
func New(threshold Level, w io.Writer) *Logger {

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		NameKey:          "category",
		MessageKey:       "message",
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       encodeCategory,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)

	return FromZap(zap.New(core), threshold)
}

// FromZap wraps an existing zap logger. The threshold is applied here, so
// the core should accept debug entries.
func FromZap(z *zap.Logger, threshold Level) *Logger {
	return &Logger{z: z, threshold: threshold}
}

func Nop() *Logger {
	return FromZap(zap.NewNop(), Verbose)
}

func encodeCategory(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(name + ":")
}

func (l *Logger) Threshold() Level {
	return l.threshold
}

func (l *Logger) Log(category, message string, level Level) {

	if category == "" {
		l.write("log", "called with an empty category", Error)
		category = "unknown"
	}

	if level != Error && level > l.threshold {
		return
	}

	if message == "" {
		l.write("log", category, level)
		return
	}

	l.write(category, message, level)
}

// Force writes the line whatever the threshold.
func (l *Logger) Force(category, message string, level Level) {

	if category == "" {
		l.write("log", "called with an empty category", Error)
		category = "unknown"
	}

	l.write(category, message, level)
}

func (l *Logger) write(category, message string, level Level) {
	if ce := l.z.Named(category).Check(level.zap(), message); ce != nil {
		ce.Write()
	}
}

func (l *Logger) Sync() error {
	return l.z.Sync()
}

// Scope binds a category so every line from one component is attributable
// to it.
func (l *Logger) Scope(category string) *Scope {
	return &Scope{l: l, category: category}
}

type Scope struct {
	l        *Logger
	category string
}

func (s *Scope) Category() string {
	return s.category
}

func (s *Scope) Log(message string, level Level) {
	s.l.Log(s.category, message, level)
}

func (s *Scope) Force(message string, level Level) {
	s.l.Force(s.category, message, level)
}

func (s *Scope) Print(message string) {
	s.Log(message, Normal)
}

func (s *Scope) Printf(format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...), Normal)
}

func (s *Scope) Verbose(message string) {
	s.Log(message, Verbose)
}

func (s *Scope) Verbosef(format string, args ...any) {
	s.Log(fmt.Sprintf(format, args...), Verbose)
}

func (s *Scope) Error(message string) {
	s.Log(message, Error)
}
