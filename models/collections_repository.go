package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CollectionsRepository struct {
	db *gorm.DB
}

func NewCollectionsRepository(db *gorm.DB) *CollectionsRepository {
	return &CollectionsRepository{
		db: db,
	}
}

// GetByID loads a collection together with its products, ordered by id.
func (r *CollectionsRepository) GetByID(ctx context.Context, id uint) (*Collection, error) {
	var collection Collection
	if err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("products.id")
		}).
		First(&collection, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &collection, nil
}

func (r *CollectionsRepository) GetPage(ctx context.Context, offset, limit int) ([]Collection, int64, error) {
	var collections []Collection
	var total int64

	db := r.db.WithContext(ctx)

	if err := db.Model(&Collection{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("id").Offset(offset).Limit(limit).Find(&collections).Error; err != nil {
		return nil, 0, err
	}

	return collections, total, nil
}

func (r *CollectionsRepository) Create(ctx context.Context, collection *Collection) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(collection).Error
	return translateError(err)
}

// Update writes the non-empty fields of changes to the collection with the given id.
func (r *CollectionsRepository) Update(ctx context.Context, id uint, changes CollectionChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	res := r.db.WithContext(ctx).
		Model(&Collection{ID: id}).
		Omit(clause.Associations).
		Updates(Collection{Title: changes.Title})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// Delete removes the collection; its products go with it via ON DELETE CASCADE.
func (r *CollectionsRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&Collection{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

// CollectionTitleTaken reports whether another collection already uses title.
// A non-zero excludeID leaves that row out of the check.
func (r *CollectionsRepository) CollectionTitleTaken(ctx context.Context, title string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&Collection{}).Where("title = ?", title)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CollectionsRepository) CollectionExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Collection{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
