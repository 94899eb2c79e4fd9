package types

// Category is a two-level taxonomy entry. Each content variant has its own
// category space; a parent always belongs to the same variant and nesting is
// one level deep (top category -> subcategories).
type Category struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;index:idx_category_type" json:"content_type"`
	Name        string      `gorm:"column:name;size:100;not null" json:"name"`
	ParentID    *int64      `gorm:"column:parent_id;index" json:"parent,omitempty"`

	Parent        *Category   `gorm:"foreignKey:ParentID" json:"-"`
	Subcategories []*Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
}

func (Category) TableName() string { return "category" }
