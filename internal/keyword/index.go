// Package keyword provides full-text search over stored contacts.
package keyword

import (
	"context"

	"github.com/hyperjump/meishi/internal/models"
)

// SearchOptions optional parameters for contact search. Nil means use defaults.
type SearchOptions struct {
	// FuzzyEnabled enables fuzzy matching for OCR misreads and typos.
	FuzzyEnabled bool
	// Fuzziness is the maximum edit distance for fuzzy matching (1 or 2).
	// Default is 1 when FuzzyEnabled is true.
	Fuzziness int
}

// ContactIndex defines contact search operations.
type ContactIndex interface {
	Index(ctx context.Context, c *models.Contact) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Hit, error)
	Delete(ctx context.Context, id string) error
	Close() error
	// DocCount returns the total number of contacts in the index.
	DocCount() (uint64, error)
	// IDs returns the ID of every indexed contact.
	IDs(ctx context.Context) ([]string, error)
}

// Hit is a single search hit.
type Hit struct {
	ID    string
	Score float64
}
