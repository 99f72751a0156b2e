package core

// Note is the central entity of the domain.
// It is created exactly once and never updated or deleted afterwards.
// It is agnostic to storage format (SQLite, Markdown).
type Note struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds, stamped by the writer
}

// Directive is the user-selected ordering of the note list.
type Directive string

const (
	NewestToOldest Directive = "NewestToOldest"
	OldestToNewest Directive = "OldestToNewest"

	// DefaultDirective applies when no preference has been stored.
	DefaultDirective = NewestToOldest
)

// ParseDirective keeps the raw value as-is.
// Unknown values are legal and sort as a no-op.
func ParseDirective(raw string) Directive {
	if raw == "" {
		return DefaultDirective
	}
	return Directive(raw)
}

// Known reports whether d is one of the two recognized orderings.
func (d Directive) Known() bool {
	return d == NewestToOldest || d == OldestToNewest
}

func (d Directive) String() string {
	return string(d)
}
