// Package eventlog is a small bounded ring buffer of engine log events,
// backing the scripting surface's log_error/log_debug/clear_last_log
// and the engine loop's error-category logging. It carries no
// third-party dependency: composing fmt.Errorf context rather than a
// structured-logging library matches the ambient logging idiom this
// codebase otherwise uses.
package eventlog

import "fmt"

// Level distinguishes debug noise from user-facing errors.
type Level int

const (
	// Debug is for low-priority diagnostic events.
	Debug Level = iota
	// Error is for user-facing failures, usually carrying a synerr category.
	Error
)

// Entry is a single logged event.
type Entry struct {
	Level   Level
	Message string
}

// Log is a bounded tail of the most recent entries, mirroring the
// bounded-tail design of the edit log: old entries
// are dropped once capacity is reached rather than growing forever.
type Log struct {
	cap     int
	entries []Entry
}

// New returns a Log retaining at most capacity entries.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = 256
	}
	return &Log{cap: capacity}
}

// Debugf appends a debug-level entry.
func (l *Log) Debugf(format string, args ...any) {
	l.push(Entry{Level: Debug, Message: fmt.Sprintf(format, args...)})
}

// Errorf appends an error-level entry.
func (l *Log) Errorf(format string, args ...any) {
	l.push(Entry{Level: Error, Message: fmt.Sprintf(format, args...)})
}

func (l *Log) push(e Entry) {
	l.entries = append(l.entries, e)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Last returns the most recently logged entry, and false if the log is empty.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// ClearLast drops the most recent entry, the way a script acknowledges
// having read it (scripting surface's clear_last_log).
func (l *Log) ClearLast() {
	if len(l.entries) == 0 {
		return
	}
	l.entries = l.entries[:len(l.entries)-1]
}

// All returns a copy of every retained entry, oldest first.
func (l *Log) All() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
