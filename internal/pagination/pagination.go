// Package pagination windows ordered result sets into pages.
//
// Two strategies produce the same Page shape: Apply pushes LIMIT/OFFSET into a
// GORM query, and Window slices a list that is already materialized. Callers
// must order the sequence before either runs.
package pagination

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPage is used when the page parameter is missing or invalid.
	DefaultPage = 1
	// DefaultLimit is used when the limit parameter is missing or invalid.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Params is a clamped page request.
type Params struct {
	Page  int
	Limit int
}

// Parse builds Params from raw query values. Out-of-range or non-numeric
// input is clamped or defaulted, never rejected.
func Parse(rawPage, rawLimit string) Params {
	return New(atoiOr(rawPage, DefaultPage), atoiOr(rawLimit, DefaultLimit))
}

// New clamps page and limit into their valid ranges.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return n
}

// Offset is the number of items before the first one on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one window over an ordered sequence plus total-count metadata.
type Page[T any] struct {
	Docs          []T   `json:"docs"`
	TotalDocs     int64 `json:"totalDocs"`
	Limit         int   `json:"limit"`
	Page          int   `json:"page"`
	TotalPages    int   `json:"totalPages"`
	PagingCounter int   `json:"pagingCounter"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	HasNextPage   bool  `json:"hasNextPage"`
	PrevPage      *int  `json:"prevPage"`
	NextPage      *int  `json:"nextPage"`
}

// NewPage wraps docs, already windowed by p, with metadata for total items.
func NewPage[T any](docs []T, total int64, p Params) Page[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	page := Page[T]{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         p.Limit,
		Page:          p.Page,
		TotalPages:    totalPages,
		PagingCounter: p.Offset() + 1,
		HasPrevPage:   p.Page > 1,
		HasNextPage:   int64(p.Page)*int64(p.Limit) < total,
	}
	if page.HasPrevPage {
		prev := p.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := p.Page + 1
		page.NextPage = &next
	}
	return page
}

// Apply adds the page window to an ordered query.
func Apply(db *gorm.DB, p Params) *gorm.DB {
	return db.Limit(p.Limit).Offset(p.Offset())
}

// Window slices an ordered, materialized list and wraps it as a Page.
func Window[T any](items []T, p Params) Page[T] {
	total := len(items)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	docs := make([]T, end-start)
	copy(docs, items[start:end])
	return NewPage(docs, int64(total), p)
}
