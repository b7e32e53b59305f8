package storage

import (
	"errors"
	"time"

	"github.com/scrypster/folio/pkg/types"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// Record is one persisted validation run.
type Record struct {
	ID        string       `json:"id"`
	Source    string       `json:"source"`
	CreatedAt time.Time    `json:"createdAt"`
	Report    types.Report `json:"report"`
	Score     int          `json:"score"`
}

// PaginatedResult represents a paginated result set with type safety using generics.
type PaginatedResult[T any] struct {
	// Items is the slice of results for the current page.
	Items []T `json:"items"`

	// Total is the total number of items matching the filter.
	Total int `json:"total"`

	// HasMore indicates whether there are more items after this page.
	HasMore bool `json:"hasMore"`
}

// ListOptions provides pagination and filtering options for List.
type ListOptions struct {
	// Limit is the number of items per page (default: 20, max: 100).
	Limit int

	// Offset is the number of items to skip.
	Offset int

	// ValidOnly restricts the result to reports without errors.
	ValidOnly bool
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalize applies defaults and clamps out-of-range values.
func (o *ListOptions) Normalize() {
	if o.Limit <= 0 {
		o.Limit = defaultListLimit
	}
	if o.Limit > maxListLimit {
		o.Limit = maxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// NewPage assembles a PaginatedResult from one page of items.
func NewPage[T any](items []T, total int, opts ListOptions) *PaginatedResult[T] {
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:   items,
		Total:   total,
		HasMore: opts.Offset+len(items) < total,
	}
}
