package core

import (
	"cmp"
	"slices"
	"sync"
)

// Sort orders notes by timestamp according to d and returns a new slice.
// Equal timestamps keep their input order. An unrecognized directive
// leaves the input order untouched.
func Sort(notes []Note, d Directive) []Note {
	out := slices.Clone(notes)

	switch d {
	case NewestToOldest:
		slices.SortStableFunc(out, func(a, b Note) int {
			return cmp.Compare(b.Timestamp, a.Timestamp)
		})
	case OldestToNewest:
		slices.SortStableFunc(out, func(a, b Note) int {
			return cmp.Compare(a.Timestamp, b.Timestamp)
		})
	}

	return out
}

// Render projects each note to its display line: the content only.
func Render(notes []Note) []string {
	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, n.Content)
	}
	return lines
}

// DisplayList is the visible list of notes.
// Every Replace swaps the whole contents; nothing is carried over.
type DisplayList struct {
	mu    sync.RWMutex
	items []string
}

// Replace renders notes into the list, discarding the previous contents.
func (d *DisplayList) Replace(notes []Note) {
	lines := Render(notes)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = lines
}

// Items returns a copy of the current lines.
func (d *DisplayList) Items() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.items)
}

// Len returns the number of displayed lines.
func (d *DisplayList) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}
