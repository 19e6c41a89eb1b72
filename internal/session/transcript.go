// Package session keeps the local view of one conversation session.
// Message history of record lives on the remote thread; this copy
// exists only for console display.
package session

import "sync"

// Entry is one displayed conversation message.
type Entry struct {
	Role string
	Text string
}

// Transcript maintains an ordered list of conversation entries. It is
// safe for concurrent use.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewTranscript creates an empty Transcript.
func NewTranscript() *Transcript {
	return &Transcript{entries: make([]Entry, 0)}
}

// Add appends a new entry with the given role and text.
func (t *Transcript) Add(role, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Role: role, Text: text})
}

// Entries returns a copy of all entries in order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
