// Package diag is the diagnostic channel of the license engine. Components
// report warnings and debug traces through a Sink so that hosts decide where
// they go and tests can assert on them.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Sink receives diagnostics. keyvals are alternating key/value pairs.
type Sink interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
}

// Logger is a Sink backed by charmbracelet/log.
type Logger struct {
	l *log.Logger
}

// NewLogger writes diagnostics to w. Debug output is shown only when debug
// is set. Messages carry their own tag, so the logger adds no prefix.
func NewLogger(w io.Writer, debug bool) *Logger {
	l := log.NewWithOptions(w, log.Options{})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return &Logger{l: l}
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.l.Debug(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.l.Info(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.l.Warn(msg, keyvals...) }

// Discard drops everything.
type Discard struct{}

func (Discard) Debug(string, ...any) {}
func (Discard) Info(string, ...any)  {}
func (Discard) Warn(string, ...any)  {}

// Level tags a recorded entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level   Level
	Msg     string
	Keyvals []any
}

// String renders the entry as "msg key=value ...".
func (e Entry) String() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	for i := 0; i+1 < len(e.Keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", e.Keyvals[i], e.Keyvals[i+1])
	}
	return b.String()
}

// Recorder keeps every diagnostic in memory.
type Recorder struct {
	Entries []Entry
}

func (r *Recorder) Debug(msg string, keyvals ...any) { r.add(LevelDebug, msg, keyvals) }
func (r *Recorder) Info(msg string, keyvals ...any)  { r.add(LevelInfo, msg, keyvals) }
func (r *Recorder) Warn(msg string, keyvals ...any)  { r.add(LevelWarn, msg, keyvals) }

func (r *Recorder) add(level Level, msg string, keyvals []any) {
	r.Entries = append(r.Entries, Entry{Level: level, Msg: msg, Keyvals: keyvals})
}

// Warnings returns the recorded warnings in order.
func (r *Recorder) Warnings() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Level == LevelWarn {
			out = append(out, e)
		}
	}
	return out
}
