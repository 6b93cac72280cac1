package model

// 存储路径中的集合名，路径格式为 "compositions/<id>/skilltrees/<id>/skills/<id>/skills/<id>..."
const (
	CollectionCompositions = "compositions"
	CollectionSkilltrees   = "skilltrees"
	CollectionSkills       = "skills"
)

// swagger:model Composition
type Composition struct {
	UUIDBase
	Title             string  `gorm:"size:255;not null" json:"title"`
	OwnerID           uint    `gorm:"index;type:bigint unsigned" json:"ownerId"`
	OrganizationID    string  `gorm:"size:36;index" json:"organizationId,omitempty"`
	SharedPublic      bool    `gorm:"default:false" json:"sharedPublic"`
	CanCopy           bool    `gorm:"default:false" json:"canCopy"`
	GradeAllByDefault bool    `gorm:"default:true" json:"gradeAllByDefault"`
	EvaluationModelID *string `gorm:"type:varchar(36)" json:"evaluationModelId,omitempty"`
}

func (Composition) TableName() string {
	return "compositions"
}

// Path 返回组合的存储路径
func (c *Composition) Path() string {
	return CollectionCompositions + "/" + c.ID
}
