package schematic

import (
	"slices"

	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/pubsub"
)

// EventLogUpdated is published by Log.Flush.
const EventLogUpdated pubsub.EventType = "log_updated"

// Log is the document's message log, most recent first.
type Log struct {
	entries []string
	updated *pubsub.Topic[[]string]
}

func newLog() *Log {
	return &Log{updated: pubsub.NewTopic[[]string](EventLogUpdated)}
}

// Append puts msg at the front of the log. No event is raised.
func (l *Log) Append(msg string) {
	l.entries = slices.Insert(l.entries, 0, msg)
	log.Debug(log.CatDoc, "Log append", "message", msg)
}

// Flush publishes the full log without clearing it.
func (l *Log) Flush() {
	l.updated.Publish(l.Entries())
}

// Clear empties the log. No event is raised.
func (l *Log) Clear() {
	l.entries = nil
}

// Entries returns a copy of the log, most recent first. Never nil.
func (l *Log) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int { return len(l.entries) }

// Updated is the subscription point for log_updated.
func (l *Log) Updated() pubsub.Subscriber[[]string] { return l.updated }

func (l *Log) close() {
	l.updated.Close()
}
