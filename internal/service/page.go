package service

import "github.com/iliyamo/event-enrollment-api/internal/model"

// Pagination defaults shared by every list operation.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a 1-indexed slice of a listing.
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes client supplied values: non-positive numbers fall
// back to the defaults and sizes are capped at MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Total    int  `json:"total"`
	NextPage *int `json:"next_page"`
}

func paginate(p Page, total int) Pagination {
	out := Pagination{Limit: p.Size, Offset: p.Offset(), Total: total}
	if p.Offset()+p.Size < total {
		next := p.Number + 1
		out.NextPage = &next
	}
	return out
}

// VenuePage is one page of an owner's venues.
type VenuePage struct {
	Collection []model.Venue `json:"collection"`
	Pagination Pagination    `json:"pagination"`
}

// EventPage is one page of the public event listing.
type EventPage struct {
	Collection []model.EventListItem `json:"collection"`
	Pagination Pagination            `json:"pagination"`
}
