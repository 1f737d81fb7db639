// Package pagination implements the page-number contract shared by every
// post listing.
package pagination

import "strconv"

// Page describes one window over a listing of Total items.
type Page struct {
	Number   int
	Size     int
	Total    int64
	NumPages int
}

// New clamps requested into [1, NumPages]. An empty listing still has one
// (empty) page.
func New(total int64, size, requested int) Page {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Page{Number: number, Size: size, Total: total, NumPages: numPages}
}

// ParseNumber reads a page query parameter. Missing or non-numeric values
// mean the first page; range checks are left to New.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) PreviousNumber() int { return p.Number - 1 }

func (p Page) NextNumber() int { return p.Number + 1 }
