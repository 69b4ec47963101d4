package models

// CollectionChanges holds the fields of a partial collection update.
// Zero values mean "leave unchanged".
type CollectionChanges struct {
	Title string
}

func (c CollectionChanges) IsEmpty() bool {
	return c == CollectionChanges{}
}

// ProductChanges holds the fields of a partial product update.
// Zero values mean "leave unchanged".
type ProductChanges struct {
	Title        string
	Price        int64
	Description  string
	ImagePath    string
	Menu         Menu
	CollectionID uint
}

func (c ProductChanges) IsEmpty() bool {
	return c == ProductChanges{}
}
