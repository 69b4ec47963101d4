package models

// Menu classifies a product.
type Menu string

const (
	MenuCasual  Menu = "casual"
	MenuSpecial Menu = "special"
)

// Valid reports whether m is one of the known menus.
func (m Menu) Valid() bool {
	return m == MenuCasual || m == MenuSpecial
}

// Product represents a sellable item.
// It belongs to exactly one collection and references an uploaded image.
type Product struct {
	ID           uint       `gorm:"primaryKey"`
	Title        string     `gorm:"size:35;uniqueIndex;not null"`
	Price        int64      `gorm:"not null"`
	Description  string     `gorm:"type:text;not null"`
	ImagePath    string     `gorm:"size:255;not null"`
	Menu         Menu       `gorm:"size:16;not null;default:casual"`
	CollectionID uint       `gorm:"not null;index"`
	Collection   Collection `gorm:"foreignKey:CollectionID"`
}

func (p *Product) TableName() string {
	return "products"
}
