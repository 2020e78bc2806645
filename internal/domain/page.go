package domain

import "math"

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

// PageRequest is a zero based page index and a page size
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page and size to usable values
func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// keeps page*size inside int32 so offsets never overflow
	if maxPage := math.MaxInt32 / size; page > maxPage {
		page = maxPage
	}
	return PageRequest{Page: page, Size: size}
}

// Offset is the number of rows to skip
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one slice of a larger result set
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
}

// NewPage assembles a page from its content and the total element count
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    pages,
		Size:          req.Size,
		Number:        req.Page,
	}
}
