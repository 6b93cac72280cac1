package repository

import (
	"context"

	"skilltree_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	DB *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{DB: db}
}

// Upsert 以 (user_id, skill_id) 为唯一键写入状态
func (r *CompletionRepository) Upsert(ctx context.Context, c *model.SkillCompletion) error {
	return storeErr(r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "skill_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(c).Error)
}

func (r *CompletionRepository) ListByUserAndComposition(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, error) {
	var cs []model.SkillCompletion
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND composition_id = ?", userID, compositionID).
		Find(&cs).Error
	return cs, storeErr(err)
}
