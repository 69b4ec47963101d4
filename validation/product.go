package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mytheresa/catalog-service/models"
	"github.com/shopspring/decimal"
)

// MaxPrice is the highest price a product may carry.
const MaxPrice = 1_000_000_000

var maxPrice = decimal.NewFromInt(MaxPrice)

// Bounds on the price literal itself. Comparing a decimal rescales it, so a
// literal like "1e300000000" must be rejected before any arithmetic.
const (
	maxPriceLength = 32
	maxPriceScale  = 9
)

// ProductInput is the create-product form. ImageName is the client
// filename of the uploaded image, empty when no file was sent.
type ProductInput struct {
	Title        string `form:"title" validate:"required,alphanumunicode,max=35"`
	Price        string `form:"price" validate:"required"`
	Description  string `form:"description" validate:"required,notblank"`
	Menu         string `form:"menu" validate:"omitempty,oneof=casual special"`
	CollectionID string `form:"collection_id" validate:"required"`
	ImageName    string `form:"product_image" validate:"required"`
}

// ProductUpdateInput is the update-product form. Empty means not supplied.
type ProductUpdateInput struct {
	Title        string `form:"title" validate:"omitempty,alphanumunicode,max=35"`
	Price        string `form:"price"`
	Description  string `form:"description" validate:"omitempty,notblank"`
	Menu         string `form:"menu" validate:"omitempty,oneof=casual special"`
	CollectionID string `form:"collection_id"`
}

// CreateProduct returns the product to insert. ImagePath is left for the
// caller to fill in once the upload is stored.
func CreateProduct(ctx context.Context, in ProductInput, products ProductLookup, collections CollectionLookup) (*models.Product, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	collectionID, err := parseCollectionID(in.CollectionID)
	if err != nil {
		return nil, err
	}

	if err := productTitleFree(ctx, products, in.Title, 0); err != nil {
		return nil, err
	}

	if err := collectionPresent(ctx, collections, collectionID); err != nil {
		return nil, err
	}

	menu := models.MenuCasual
	if in.Menu != "" {
		menu = models.Menu(in.Menu)
	}

	return &models.Product{
		Title:        in.Title,
		Price:        price,
		Description:  in.Description,
		Menu:         menu,
		CollectionID: collectionID,
	}, nil
}

// UpdateProduct validates the supplied fields of an update on product id.
func UpdateProduct(ctx context.Context, id uint, in ProductUpdateInput, products ProductLookup, collections CollectionLookup) (models.ProductChanges, error) {
	var changes models.ProductChanges

	if err := checkStruct(in); err != nil {
		return changes, err
	}

	if in.Price != "" {
		price, err := parsePrice(in.Price)
		if err != nil {
			return changes, err
		}
		changes.Price = price
	}

	if in.CollectionID != "" {
		collectionID, err := parseCollectionID(in.CollectionID)
		if err != nil {
			return changes, err
		}
		if err := collectionPresent(ctx, collections, collectionID); err != nil {
			return changes, err
		}
		changes.CollectionID = collectionID
	}

	if in.Title != "" {
		if err := productTitleFree(ctx, products, in.Title, id); err != nil {
			return changes, err
		}
		changes.Title = in.Title
	}

	changes.Description = in.Description
	changes.Menu = models.Menu(in.Menu)

	return changes, nil
}

// parsePrice accepts whole numbers written either as integers or with a
// zero fraction ("10", "10.00").
func parsePrice(raw string) (int64, error) {
	if len(raw) > maxPriceLength {
		return 0, newError("price", fmt.Sprintf("must not exceed %d characters", maxPriceLength), raw)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, newError("price", "must be a number", raw)
	}
	if exp := price.Exponent(); exp > 0 || exp < -maxPriceScale {
		return 0, newError("price", "must be a plain whole number", raw)
	}
	if !price.IsInteger() {
		return 0, newError("price", "must be a whole number", raw)
	}
	if !price.IsPositive() {
		return 0, newError("price", "must be greater than 0", raw)
	}
	if price.GreaterThan(maxPrice) {
		return 0, newError("price", fmt.Sprintf("must not exceed %d", MaxPrice), raw)
	}
	return price.IntPart(), nil
}

func parseCollectionID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, newError("collection_id", "must be a positive integer", raw)
	}
	return uint(id), nil
}

func productTitleFree(ctx context.Context, lookup ProductLookup, title string, excludeID uint) error {
	taken, err := lookup.ProductTitleTaken(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("checking product title: %w", err)
	}
	if taken {
		return newError("title", "a product with this title already exists", title)
	}
	return nil
}

func collectionPresent(ctx context.Context, lookup CollectionLookup, id uint) error {
	exists, err := lookup.CollectionExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		return newError("collection_id", "collection does not exist", id)
	}
	return nil
}
