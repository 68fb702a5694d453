// Package pagination carries page/page_size query parameters from handlers
// through services down to GORM queries.
package pagination

import (
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in missing values and clamps out-of-range ones, so requests
// that bypass binding (pipeline jobs, tests) still produce sane queries.
func (p *PageRequest) Defaults() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = DefaultPageSize
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResponse is the list envelope returned by every paginated endpoint.
type PageResponse[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NewPageResponse builds a PageResponse. Data is never null in JSON.
func NewPageResponse[T any](data []T, page, pageSize int, totalItems int64) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	return PageResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// Paginate is a GORM scope applying OFFSET and LIMIT.
func Paginate(req PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.PageSize)
	}
}
