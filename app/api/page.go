package api

import "github.com/mytheresa/catalog-service/validation"

// Page is the pagination envelope of list endpoints.
type Page[T any] struct {
	Page        int   `json:"page"`
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Items       []T   `json:"items"`
}

func NewPage[T any](p validation.Page, total int64, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Page:        p.Number,
		PerPage:     p.PerPage,
		TotalItems:  total,
		HasNext:     int64(p.Offset()+p.PerPage) < total,
		HasPrevious: p.Number > 1,
		Items:       items,
	}
}
