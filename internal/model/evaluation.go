package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type EvaluationType string

const (
	EvaluationNumerical  EvaluationType = "numerical"
	EvaluationPercentage EvaluationType = "percentage"
	EvaluationLetter     EvaluationType = "letter"
)

// EvaluationOption 字母评分的一档
type EvaluationOption struct {
	Letter      string  `json:"letter"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Value       float64 `json:"value"`
	Minimum     float64 `json:"minimum"`
	Maximum     float64 `json:"maximum"`
	ValuePasses bool    `json:"valuePasses"`
}

type EvaluationOptions []EvaluationOption

func (o EvaluationOptions) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	return string(b), err
}

func (o *EvaluationOptions) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*o = EvaluationOptions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for EvaluationOptions")
	}
	return json.Unmarshal(raw, o)
}

// swagger:model EvaluationModel
type EvaluationModel struct {
	UUIDBase
	OwnerID      uint              `gorm:"index;type:bigint unsigned" json:"ownerId"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	Type         EvaluationType    `gorm:"size:20;not null" json:"type"`
	Minimum      float64           `gorm:"default:0" json:"minimum"`
	Maximum      float64           `gorm:"default:0" json:"maximum"`
	PassLevel    float64           `gorm:"default:0" json:"passLevel"`
	Options      EvaluationOptions `gorm:"type:json" json:"options"`
	RepeatOption bool              `gorm:"default:false" json:"repeatOption"`
}

func (EvaluationModel) TableName() string {
	return "evaluation_models"
}

// swagger:model Evaluation
type Evaluation struct {
	UUIDBase
	StudentID         uint     `gorm:"index;not null" json:"studentId"`
	TeacherID         uint     `gorm:"index;not null" json:"teacherId"`
	CompositionID     string   `gorm:"index;type:varchar(36);not null" json:"compositionId"`
	SkilltreeID       string   `gorm:"index;type:varchar(36);not null" json:"skilltreeId"`
	SkillID           string   `gorm:"index;type:varchar(36);not null" json:"skillId"`
	EvaluationModelID string   `gorm:"type:varchar(36)" json:"evaluationModelId"`
	Grade             *float64 `json:"grade,omitempty"`
	Percentage        *float64 `json:"percentage,omitempty"`
	Letter            string   `gorm:"size:10" json:"letter,omitempty"`
	Repeat            bool     `gorm:"default:false" json:"repeat"`
	Comment           string   `gorm:"type:text" json:"comment,omitempty"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
