// Package paginator splits ordered slices into fixed-size pages.
package paginator

import (
	"strconv"
	"strings"
)

// PerPage is the page size used by every feed.
const PerPage = 10

// Page is one slice of a paginated collection. Numbers are 1-based.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasPrevious reports whether an earlier page exists.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasOtherPages reports whether the collection spans more than one page.
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

func (p *Page[T]) NextNumber() int { return p.Number + 1 }

func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// Range returns 1..NumPages, for templates.
func (p *Page[T]) Range() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// Paginator pages over an in-memory slice.
type Paginator[T any] struct {
	items   []T
	perPage int
}

// New returns a Paginator over items. A non-positive perPage falls back
// to PerPage.
func New[T any](items []T, perPage int) *Paginator[T] {
	if perPage <= 0 {
		perPage = PerPage
	}
	return &Paginator[T]{items: items, perPage: perPage}
}

// Count is the total number of items.
func (p *Paginator[T]) Count() int { return len(p.items) }

// NumPages is never less than one; an empty collection has one empty page.
func (p *Paginator[T]) NumPages() int {
	if len(p.items) == 0 {
		return 1
	}
	return (len(p.items) + p.perPage - 1) / p.perPage
}

// Page returns page number n clamped into [1, NumPages].
func (p *Paginator[T]) Page(n int) *Page[T] {
	pages := p.NumPages()
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	start := (n - 1) * p.perPage
	end := min(start+p.perPage, len(p.items))
	return &Page[T]{
		Items:    p.items[start:end],
		Number:   n,
		NumPages: pages,
		Count:    len(p.items),
	}
}

// GetPage parses a raw query value and returns the matching page.
// Missing or malformed values yield the first page.
func (p *Paginator[T]) GetPage(raw string) *Page[T] {
	return p.Page(ParseNumber(raw))
}

// ParseNumber converts a page query value to a number, defaulting to 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return n
}
