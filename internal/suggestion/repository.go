package suggestion

import "context"

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Repository defines the interface for suggestion persistence.
type Repository interface {
	// List returns up to limit suggestions, newest first.
	List(ctx context.Context, limit int) ([]Suggestion, error)

	// Create stores a suggestion. Storing the same ID twice is a no-op.
	Create(ctx context.Context, s Suggestion) error
}
