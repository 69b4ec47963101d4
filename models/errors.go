package models

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrCollectionNotFound is returned when a collection is not found.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrTitleTaken is returned when the store rejects a duplicate title.
	ErrTitleTaken = errors.New("title already exists")
	// ErrCollectionMissing is returned when a product references a collection
	// the store does not have.
	ErrCollectionMissing = errors.New("referenced collection does not exist")
)

// SQLSTATE codes for the constraints the schema declares.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translateError maps constraint violations the store reports into the
// sentinel errors above. Anything else is returned as is.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return ErrTitleTaken
	case foreignKeyViolation:
		return ErrCollectionMissing
	}
	return err
}
