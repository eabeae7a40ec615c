// Package pagination computes page windows and page metadata, and runs the
// fetch and count halves of a paginated query concurrently.
package pagination

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrInvalidParams is returned when page or limit are out of range
var ErrInvalidParams = errors.New("invalid pagination parameters")

// Params represents a 1-based page request
type Params struct {
	Page  int
	Limit int
}

// Validate checks page >= 1 and limit in [1, MaxLimit]
func (p Params) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be a positive integer", ErrInvalidParams)
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParams, MaxLimit)
	}
	return nil
}

// Offset returns the number of rows skipped before this page
func (p Params) Offset() int {
	return CalculateOffset(p.Page, p.Limit)
}

// CalculateOffset calculates the OFFSET for a 1-based page number.
//
// Examples:
//   - Page 1, Limit 10 -> Offset 0
//   - Page 3, Limit 10 -> Offset 20
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages returns ceil(total / limit). An empty result has zero
// pages, so both navigation flags come out false.
func CalculateTotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Meta is the pagination block returned alongside a page of items
type Meta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewMeta derives page metadata from the request and the total match count
func NewMeta(page, limit, total int) Meta {
	totalPages := CalculateTotalPages(total, limit)
	return Meta{
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Page is one window of an ordered result set
type Page[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// Source is the capability a store exposes to be paginated. F is the
// store's filter type.
type Source[T any, F any] interface {
	// Find returns at most limit items matching filter, ordered by sort,
	// after skipping offset items
	Find(ctx context.Context, filter F, sort Sort, offset, limit int) ([]T, error)

	// Count returns the number of items matching filter, ignoring offset and limit
	Count(ctx context.Context, filter F) (int, error)
}

// Paginate validates params, then runs Find and Count concurrently and
// combines them once both finish.
func Paginate[T any, F any](ctx context.Context, src Source[T, F], filter F, sort Sort, params Params) (*Page[T], error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		items []T
		total int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := src.Find(gctx, filter, sort, params.Offset(), params.Limit)
		if err != nil {
			return fmt.Errorf("failed to fetch page: %w", err)
		}
		items = found
		return nil
	})

	g.Go(func() error {
		n, err := src.Count(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to count items: %w", err)
		}
		total = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return &Page[T]{
		Items:      items,
		Pagination: NewMeta(params.Page, params.Limit, total),
	}, nil
}
