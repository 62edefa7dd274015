// Package log holds logger adapters used by the pipeline's own tests and
// embedders that want to inspect what a run reported.
package log

import (
	"sync"

	"github.com/bft-labs/thumbship/internal/ports"
)

// Level names a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one recorded log line.
type Entry struct {
	Level  Level
	Msg    string
	Fields []ports.Field
}

// Field returns the value of the named field, or nil.
func (e Entry) Field(key string) any {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Recorder implements ports.Logger by keeping every entry in memory.
// It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Debug(msg string, fields ...ports.Field) { r.record(LevelDebug, msg, fields) }
func (r *Recorder) Info(msg string, fields ...ports.Field)  { r.record(LevelInfo, msg, fields) }
func (r *Recorder) Warn(msg string, fields ...ports.Field)  { r.record(LevelWarn, msg, fields) }
func (r *Recorder) Error(msg string, fields ...ports.Field) { r.record(LevelError, msg, fields) }

func (r *Recorder) record(level Level, msg string, fields []ports.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: fields})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

// Find returns the entries with the given message, in order.
func (r *Recorder) Find(msg string) []Entry {
	var found []Entry
	for _, e := range r.Entries() {
		if e.Msg == msg {
			found = append(found, e)
		}
	}
	return found
}

// Count returns how many entries have the given message.
func (r *Recorder) Count(msg string) int {
	return len(r.Find(msg))
}
