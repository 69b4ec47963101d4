package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

type ProductFilters struct {
	CollectionID uint
	Menu         Menu
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).
		Preload("Collection").
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

func (r *ProductsRepository) GetPage(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&Product{})
		if filters.CollectionID != 0 {
			query = query.Where("products.collection_id = ?", filters.CollectionID)
		}
		if filters.Menu != "" {
			query = query.Where("products.menu = ?", filters.Menu)
		}
		return query
	}

	// Count total after filtering
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := filtered().
		Preload("Collection").
		Order("products.id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
	return translateError(err)
}

// Update writes the non-empty fields of changes to the product with the given id.
func (r *ProductsRepository) Update(ctx context.Context, id uint, changes ProductChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&Product{ID: id}).
		Omit(clause.Associations).
		Updates(Product{
			Title:        changes.Title,
			Price:        changes.Price,
			Description:  changes.Description,
			ImagePath:    changes.ImagePath,
			Menu:         changes.Menu,
			CollectionID: changes.CollectionID,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ProductTitleTaken reports whether another product already uses title.
// A non-zero excludeID leaves that row out of the check.
func (r *ProductsRepository) ProductTitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Product{}).Where("title = ?", title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
