// Package logger provides the engine-owned structured log.
//
// The simulator never writes to the host's logging facilities on its
// own: everything a user should see — load failures, breakpoint
// warnings, lookup misses — lands here as an Entry, and the embedding
// UI decides how to present it (toast, console line, log panel). An
// optional echo writer mirrors entries as they arrive, which the CLI
// uses for its stderr output.
package logger

import (
	"fmt"
	"io"
	"time"
)

// Level classifies the severity of a log entry.
type Level uint8

// Log levels.
const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", uint8(l))
	}
}

// Entry is a single log line.
type Entry struct {
	// Time is when the entry was logged.
	Time time.Time

	// Level is the entry severity.
	Level Level

	// Tag names the subsystem that produced the entry ("loader",
	// "breakpoint", "session").
	Tag string

	// Detail is the human-readable message.
	Detail string
}

// String renders the entry as a single log line.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Level, e.Tag, e.Detail)
}

// DefaultMaxEntries bounds a log created with New.
const DefaultMaxEntries = 256

// Log is a bounded in-memory log. When the bound is exceeded the
// oldest entries are dropped.
type Log struct {
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

// New creates an empty log holding at most maxEntries entries. A
// maxEntries of 0 or below selects DefaultMaxEntries.
func New(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{maxEntries: maxEntries}
}

// SetEcho mirrors every subsequent entry to w. A nil w disables
// echoing.
func (l *Log) SetEcho(w io.Writer) {
	l.echo = w
}

// Infof logs an informational entry.
func (l *Log) Infof(tag, format string, args ...any) {
	l.log(LevelInfo, tag, format, args...)
}

// Warnf logs a warning entry.
func (l *Log) Warnf(tag, format string, args ...any) {
	l.log(LevelWarn, tag, format, args...)
}

// Errorf logs an error entry.
func (l *Log) Errorf(tag, format string, args ...any) {
	l.log(LevelError, tag, format, args...)
}

func (l *Log) log(level Level, tag, format string, args ...any) {
	e := Entry{
		Time:   time.Now(),
		Level:  level,
		Tag:    tag,
		Detail: fmt.Sprintf(format, args...),
	}
	l.entries = append(l.entries, e)
	if len(l.entries) > l.maxEntries {
		l.entries = l.entries[len(l.entries)-l.maxEntries:]
	}
	if l.echo != nil {
		fmt.Fprintln(l.echo, e.String())
	}
}

// Entries returns a copy of the current entries, oldest first.
func (l *Log) Entries() []Entry {
	c := make([]Entry, len(l.entries))
	copy(c, l.entries)
	return c
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Tail writes the most recent n entries to output, oldest first.
func (l *Log) Tail(output io.Writer, n int) {
	if n > len(l.entries) {
		n = len(l.entries)
	}
	for _, e := range l.entries[len(l.entries)-n:] {
		fmt.Fprintln(output, e.String())
	}
}

// Clear discards all entries.
func (l *Log) Clear() {
	l.entries = l.entries[:0]
}
