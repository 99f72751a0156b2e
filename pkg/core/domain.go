package core

import "fmt"

// EventType represents the type of change observed in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventChange EventType = "CHANGE"
)

// Event represents a change in the underlying storage.
// Watchers may not know which note changed, in which case ID is zero.
type Event struct {
	Type      EventType
	ID        int64
	Timestamp int64 // Unix milliseconds
}

func (e Event) String() string {
	if e.ID == 0 {
		return string(e.Type)
	}
	return fmt.Sprintf("%s %d", e.Type, e.ID)
}
