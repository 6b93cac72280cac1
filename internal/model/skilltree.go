package model

// swagger:model Skilltree
type Skilltree struct {
	UUIDBase
	CompositionID string `gorm:"index;type:varchar(36);not null" json:"compositionId"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`
	Order         int    `gorm:"column:order;default:0" json:"order"`
	Collapsible   bool   `gorm:"default:true" json:"collapsible"`
}

func (Skilltree) TableName() string {
	return "skilltrees"
}

func (t *Skilltree) Path() string {
	return CollectionCompositions + "/" + t.CompositionID + "/" + CollectionSkilltrees + "/" + t.ID
}
