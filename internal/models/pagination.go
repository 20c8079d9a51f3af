package models

// PageMeta describes the page returned by a paginated listing.
type PageMeta struct {
	Total       int64 `json:"total"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// PageLinks are navigation URLs for a paginated listing.
type PageLinks struct {
	First    string `json:"first"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	Last     string `json:"last"`
}

// Paginated is the envelope returned by every list endpoint.
type Paginated[T any] struct {
	Data  []T        `json:"data"`
	Meta  PageMeta   `json:"meta"`
	Links *PageLinks `json:"links,omitempty"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a normalised page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest defaults non-positive values to page 1 and limit 10 and
// caps the limit at MaxLimit.
func NewPageRequest(page, limit int) PageRequest {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPageMeta computes the page metadata for total rows.
func NewPageMeta(p PageRequest, total int64) PageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageMeta{
		Total:       total,
		Page:        p.Page,
		Limit:       p.Limit,
		TotalPages:  totalPages,
		HasNext:     p.Page < totalPages,
		HasPrevious: p.Page > 1,
	}
}

// NewPaginated wraps data with metadata. A nil slice is replaced by an empty one.
func NewPaginated[T any](data []T, p PageRequest, total int64) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return &Paginated[T]{Data: data, Meta: NewPageMeta(p, total)}
}
