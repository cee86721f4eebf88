package usecase

import (
	"sync"
	"time"

	"github.com/saptono/wicara/domain/entities"
)

// TranscriptLog is the append-only chronological record of classified
// messages for the current session. Entries are never removed except by
// Clear, and snapshots are copies, never live references.
type TranscriptLog struct {
	mu      sync.Mutex
	nextID  int64
	entries []entities.TranscriptEntry
}

// NewTranscriptLog creates an empty transcript log
func NewTranscriptLog() *TranscriptLog {
	return &TranscriptLog{nextID: 1}
}

// Append records one entry, assigning the next monotonic ID and the current
// timestamp. Insertion order is arrival order.
func (l *TranscriptLog) Append(kind entities.MessageKind, text string) entities.TranscriptEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := entities.TranscriptEntry{
		ID:        l.nextID,
		Timestamp: time.Now(),
		Kind:      kind,
		Text:      text,
	}
	l.nextID++
	l.entries = append(l.entries, entry)
	return entry
}

// Snapshot returns a point-in-time copy of the transcript in append order
func (l *TranscriptLog) Snapshot() []entities.TranscriptEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]entities.TranscriptEntry, len(l.entries))
	copy(snapshot, l.entries)
	return snapshot
}

// Clear resets the log to empty. IDs keep counting up so entries from an
// earlier session are never confused with entries from the current one.
func (l *TranscriptLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Len returns the number of entries currently in the log
func (l *TranscriptLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
