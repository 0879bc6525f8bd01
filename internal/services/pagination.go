package services

import "github.com/localnerve/foodgram/internal/types"

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 100

// PageRequest selects a 1-based page of Limit rows.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps out-of-range values.
func (p PageRequest) Normalize(defaultSize int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset is the number of rows before the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Check rejects a page past the last one. Page 1 is always valid, even for
// no rows.
func (p PageRequest) Check(total int64) error {
	if p.Page <= 1 {
		return nil
	}
	limit := int64(max(p.Limit, 1))
	lastPage := (total + limit - 1) / limit
	if int64(p.Page) > lastPage {
		return types.NotFound("pagination.invalid_page", "Invalid page.")
	}
	return nil
}

// Page is one page of results and the total count across all pages.
type Page[T any] struct {
	Count   int64
	Results []T
	Request PageRequest
}

// HasNext reports whether rows exist after this page.
func (p Page[T]) HasNext() bool {
	return int64(p.Request.Offset()+len(p.Results)) < p.Count
}

// HasPrevious reports whether this is not the first page.
func (p Page[T]) HasPrevious() bool {
	return p.Request.Page > 1
}
