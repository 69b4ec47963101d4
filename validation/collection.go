package validation

import (
	"context"
	"fmt"

	"github.com/mytheresa/catalog-service/models"
)

// CollectionInput is the create-collection form.
type CollectionInput struct {
	Title string `form:"title" validate:"required,alphanumunicode,max=35"`
}

// CollectionUpdateInput is the update-collection form. Empty means not supplied.
type CollectionUpdateInput struct {
	Title string `form:"title" validate:"omitempty,alphanumunicode,max=35"`
}

func CreateCollection(ctx context.Context, in CollectionInput, lookup CollectionLookup) (*models.Collection, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	if err := collectionTitleFree(ctx, lookup, in.Title, 0); err != nil {
		return nil, err
	}

	return &models.Collection{Title: in.Title}, nil
}

// UpdateCollection validates the supplied fields of an update on collection id.
func UpdateCollection(ctx context.Context, id uint, in CollectionUpdateInput, lookup CollectionLookup) (models.CollectionChanges, error) {
	if err := checkStruct(in); err != nil {
		return models.CollectionChanges{}, err
	}

	if in.Title != "" {
		if err := collectionTitleFree(ctx, lookup, in.Title, id); err != nil {
			return models.CollectionChanges{}, err
		}
	}

	return models.CollectionChanges{Title: in.Title}, nil
}

func collectionTitleFree(ctx context.Context, lookup CollectionLookup, title string, excludeID uint) error {
	taken, err := lookup.CollectionTitleTaken(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("checking collection title: %w", err)
	}
	if taken {
		return newError("title", "a collection with this title already exists", title)
	}
	return nil
}
