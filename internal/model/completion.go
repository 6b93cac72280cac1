package model

import "time"

type SkillStatus string

const (
	SkillLocked   SkillStatus = "locked"
	SkillUnlocked SkillStatus = "unlocked"
	SkillSelected SkillStatus = "selected"
)

func (s SkillStatus) Valid() bool {
	return s == SkillLocked || s == SkillUnlocked || s == SkillSelected
}

// SkillCompletion 学生在某个技能上的完成状态
//
// swagger:model SkillCompletion
type SkillCompletion struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint        `gorm:"uniqueIndex:idx_completion_user_skill;not null" json:"userId"`
	CompositionID string      `gorm:"index;type:varchar(36);not null" json:"compositionId"`
	SkilltreeID   string      `gorm:"index;type:varchar(36);not null" json:"skilltreeId"`
	SkillID       string      `gorm:"uniqueIndex:idx_completion_user_skill;type:varchar(36);not null" json:"skillId"`
	Status        SkillStatus `gorm:"size:20;not null" json:"status"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func (SkillCompletion) TableName() string {
	return "skill_completions"
}
