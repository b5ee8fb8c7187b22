package spellcheck

import (
	"maps"
	"slices"
	"sync"
)

// Finding is one misspelling inside a node's plain text.
type Finding struct {
	// Offset is the byte offset of the word in the node's plain text.
	Offset int      `json:"offset"`
	Text   string   `json:"text"`
	Subs   []string `json:"subs,omitempty"`
}

// Entry is the last checked state of one node.
type Entry struct {
	// Text is the plain text the findings were computed for.
	Text string

	// Spelling holds the findings; nil means the text was never checked.
	Spelling []Finding
}

// Table maps node ids to their last checked entry. It is the only state the
// coordinator shares across the asynchronous checker call.
type Table struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]Entry)}
}

// Get returns the entry for id.
func (t *Table) Get(id string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[id]
	return e, ok
}

// Set records the entry for id.
func (t *Table) Set(id string, e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[id] = e
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// IDs returns the recorded ids in sorted order.
func (t *Table) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.entries))
}

// Retain drops every entry whose id is not in keep and returns how many
// were dropped.
func (t *Table) Retain(keep map[string]struct{}) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for id := range t.entries {
		if _, ok := keep[id]; !ok {
			delete(t.entries, id)
			n++
		}
	}
	return n
}
