package service

// Page sizes for list endpoints.
const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Page selects a 1-based page of a list.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number and limit into range; zero values pick the defaults.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// HasNext reports whether more items follow this page out of total.
func (p Page) HasNext(total int64) bool {
	return int64(p.Number*p.Limit) < total
}

// Paged is one page of results with the total count across all pages.
type Paged[T any] struct {
	Count int64
	Page  Page
	Items []T
}
