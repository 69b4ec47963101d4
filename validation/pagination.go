package validation

import (
	"strconv"

	"github.com/mytheresa/catalog-service/models"
)

const (
	DefaultPerPage = 16
	MaxPerPage     = 20
	// MaxPage keeps the row offset well inside int.
	MaxPage = 1_000_000
)

// Page is a validated page/per_page pair.
type Page struct {
	Number  int `form:"page" validate:"min=1,max=1000000"`
	PerPage int `form:"per_page" validate:"min=1,max=20"`
}

// Offset is the number of rows to skip before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// ParsePage reads the page and per_page query values. Empty values fall
// back to page 1 and DefaultPerPage.
func ParsePage(page, perPage string) (Page, error) {
	p := Page{Number: 1, PerPage: DefaultPerPage}

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return Page{}, newError("page", "must be an integer", page)
		}
		p.Number = n
	}

	if perPage != "" {
		n, err := strconv.Atoi(perPage)
		if err != nil {
			return Page{}, newError("per_page", "must be an integer", perPage)
		}
		p.PerPage = n
	}

	if err := checkStruct(p); err != nil {
		return Page{}, err
	}
	return p, nil
}

// ParseProductFilters reads the optional collection_id and menu list filters.
func ParseProductFilters(collectionID, menu string) (models.ProductFilters, error) {
	var filters models.ProductFilters

	if collectionID != "" {
		id, err := parseCollectionID(collectionID)
		if err != nil {
			return filters, err
		}
		filters.CollectionID = id
	}

	if menu != "" {
		m := models.Menu(menu)
		if !m.Valid() {
			return filters, newError("menu", "must be one of: casual, special", menu)
		}
		filters.Menu = m
	}

	return filters, nil
}
