package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

type GradeSkill string

const (
	GradeSkillDefault   GradeSkill = "default"
	GradeSkillNotGraded GradeSkill = "not_graded"
	GradeSkillGraded    GradeSkill = "graded"
)

const (
	MinSkillWeight     = 1
	MaxSkillWeight     = 10
	DefaultSkillWeight = 1
)

// Link 技能附带的学习资料链接
type Link struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	IconRef string `json:"iconRef,omitempty"`
}

type Links []Link

func (l Links) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

func (l *Links) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = Links{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for Links")
	}
	return json.Unmarshal(raw, l)
}

// Skill 技能树中的一个节点。子节点是独立的记录，通过 Path 寻址，不直接持久化在父节点上。
//
// swagger:model Skill
type Skill struct {
	UUIDBase
	Path          string     `gorm:"size:1024;uniqueIndex:idx_skill_path,length:512;not null" json:"path"`
	ParentPath    string     `gorm:"size:1024;index:idx_skill_parent,length:512;not null" json:"parentPath"`
	CompositionID string     `gorm:"index;type:varchar(36);not null" json:"compositionId"`
	SkilltreeID   string     `gorm:"index;type:varchar(36);not null" json:"skilltreeId"`
	Depth         int        `gorm:"default:0" json:"depth"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Description   string     `gorm:"type:longtext" json:"description"`
	Order         int        `gorm:"column:order;default:0" json:"order"`
	Optional      bool       `gorm:"default:false" json:"optional"`
	Weight        int        `gorm:"default:1" json:"weight"`
	GradeSkill    GradeSkill `gorm:"size:20;default:'default'" json:"gradeSkill"`
	Links         Links      `gorm:"type:json" json:"links"`
}

func (Skill) TableName() string {
	return "skills"
}

// EffectiveWeight 返回参与加权平均的权重，非法值回落到默认值 1
func (s *Skill) EffectiveWeight() int {
	if s.Weight < MinSkillWeight || s.Weight > MaxSkillWeight {
		return DefaultSkillWeight
	}
	return s.Weight
}

// Gradeable 根据 gradeSkill 和组合级别的默认设置判断该技能是否参与评分
func (s *Skill) Gradeable(gradeAllByDefault bool) bool {
	switch s.GradeSkill {
	case GradeSkillGraded:
		return true
	case GradeSkillNotGraded:
		return false
	default:
		return gradeAllByDefault
	}
}
