// Package paginator splits an ordered sequence into fixed-size, 1-based pages.
//
// Page numbers outside the valid range are clamped: anything below 1 (and any
// value that is not an integer) selects the first page, anything past the last
// page selects the last page. An empty sequence still has one, empty, page.
package paginator

import "strconv"

// PostsPerPage is the page size of every post feed.
const PostsPerPage = 10

type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
	PageSize int
}

// New computes page metadata for a sequence of count items. Items is left empty.
func New[T any](count, pageSize, number int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if count < 0 {
		count = 0
	}

	numPages := (count + pageSize - 1) / pageSize
	if numPages == 0 {
		numPages = 1
	}

	switch {
	case number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	return Page[T]{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PageSize: pageSize,
	}
}

// GetPage returns the requested page of items.
func GetPage[T any](items []T, pageSize, number int) Page[T] {
	page := New[T](len(items), pageSize, number)
	end := min(page.Offset()+page.PageSize, len(items))
	page.Items = items[page.Offset():end]

	return page
}

// ParseNumber reads a "page" query value; missing or malformed values mean page 1.
func ParseNumber(raw string) int {
	number, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return number
}

// Offset is the zero-based index of the first item on the page.
func (p Page[T]) Offset() int {
	return (p.Number - 1) * p.PageSize
}

func (p Page[T]) Limit() int {
	return p.PageSize
}

func (p Page[T]) Len() int {
	return len(p.Items)
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p Page[T]) NextPageNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page[T]) PreviousPageNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// PageRange lists every page number, for navigation links.
func (p Page[T]) PageRange() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

// WithItems returns the page carrying items, for callers that fetched the slice themselves.
func (p Page[T]) WithItems(items []T) Page[T] {
	p.Items = items
	return p
}

// StartIndex is the 1-based position of the first item on the page, or 0 when the page is empty.
func (p Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return p.Offset() + 1
}
