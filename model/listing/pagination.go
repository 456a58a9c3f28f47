package listing

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25

	// MaxLimit and MaxPage bound a request so that the skip always fits
	// in an int and stays well inside what the database accepts.
	MaxLimit = 1000
	MaxPage  = 1_000_000
)

// Page is a one-based page number and a page size.
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads the page and limit parameters. A value that does not start
// with a positive integer falls back to the default, so "3rd" is page 3 and
// "abc" or "0" is page 1. Values above MaxPage or MaxLimit are clamped.
func ParsePage(values url.Values) Page {
	return Page{
		Number: leadingInt(values.Get(PageKey), DefaultPage, MaxPage),
		Limit:  leadingInt(values.Get(LimitKey), DefaultLimit, MaxLimit),
	}
}

func leadingInt(val string, def, ceiling int) int {
	val = strings.TrimSpace(val)
	end := 0
	if end < len(val) && (val[end] == '+' || val[end] == '-') {
		end++
	}
	for end < len(val) && val[end] >= '0' && val[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(val[:end])
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return ceiling
	}
	if err != nil || n < 1 {
		return def
	}
	return min(n, ceiling)
}

// Skip is the number of records before the first record on the page.
func (p Page) Skip() int { return (p.Number - 1) * p.Limit }

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes where a page sits in the full result set. Next and
// Prev are only set when records exist in that direction.
type Pagination struct {
	TotalPages  int      `json:"totalPages"`
	Limit       int      `json:"limit"`
	CurrentPage int      `json:"currentPage"`
	Next        *PageRef `json:"next,omitempty"`
	Prev        *PageRef `json:"prev,omitempty"`
}

// Paginate builds the pagination descriptor for a result set of total
// records.
func (p Page) Paginate(total int) Pagination {
	out := Pagination{
		Limit:       p.Limit,
		CurrentPage: p.Number,
	}
	if p.Limit > 0 {
		out.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	if p.Skip()+p.Limit < total {
		out.Next = &PageRef{Page: p.Number + 1, Limit: p.Limit}
	}
	if p.Skip() > 0 {
		out.Prev = &PageRef{Page: p.Number - 1, Limit: p.Limit}
	}
	return out
}
