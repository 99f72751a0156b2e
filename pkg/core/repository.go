package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism (SQLite, Markdown files, ...).
type Repository interface {
	// Initialize opens or creates the named, versioned collection.
	// It is idempotent; a failure is terminal for the repository instance.
	Initialize(ctx context.Context) error

	// Create stores a new note and returns the id assigned by the engine.
	// The timestamp is taken from the engine's own clock.
	Create(ctx context.Context, content string) (int64, error)

	// List returns every note in storage-native order (ascending id).
	List(ctx context.Context) ([]Note, error)
}

// Closer is implemented by repositories holding a connection that must be
// released on shutdown.
type Closer interface {
	Close() error
}

// Watchable defines an interface for repositories that can report changes
// made by other processes sharing the same storage.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// DraftCache holds not-yet-saved input. The core only ever clears it.
type DraftCache interface {
	Clear(key string)
}

// Field is the text surface a note is typed into.
type Field interface {
	Value() string
	Clear()
	// Key identifies the draft belonging to this field.
	Key() string
}

// TextField is an in-memory Field.
type TextField struct {
	Name string
	Text string
}

func (f *TextField) Value() string { return f.Text }
func (f *TextField) Clear()        { f.Text = "" }
func (f *TextField) Key() string   { return f.Name }
