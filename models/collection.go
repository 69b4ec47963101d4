package models

// Collection is a named grouping of products.
// Deleting a collection removes its products through the FK cascade.
type Collection struct {
	ID       uint      `gorm:"primaryKey"`
	Title    string    `gorm:"size:35;uniqueIndex;not null"`
	Products []Product `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE"`
}

func (c *Collection) TableName() string {
	return "collections"
}
