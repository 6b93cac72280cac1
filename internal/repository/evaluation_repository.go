package repository

import (
	"context"

	"skilltree_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

func (r *EvaluationRepository) Create(ctx context.Context, e *model.Evaluation) error {
	return storeErr(r.DB.WithContext(ctx).Create(e).Error)
}

// ListLatestByStudent 返回学生在组合内每个技能的最新一次评分
func (r *EvaluationRepository) ListLatestByStudent(ctx context.Context, studentID uint, compositionID string) ([]model.Evaluation, error) {
	var all []model.Evaluation
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND composition_id = ?", studentID, compositionID).
		Order("created_at DESC").
		Find(&all).Error
	if err != nil {
		return nil, storeErr(err)
	}
	seen := make(map[string]bool, len(all))
	latest := make([]model.Evaluation, 0, len(all))
	for _, e := range all {
		if seen[e.SkillID] {
			continue
		}
		seen[e.SkillID] = true
		latest = append(latest, e)
	}
	return latest, nil
}

func (r *EvaluationRepository) CreateModel(ctx context.Context, m *model.EvaluationModel) error {
	return storeErr(r.DB.WithContext(ctx).Create(m).Error)
}

func (r *EvaluationRepository) FindModelByID(ctx context.Context, id string) (*model.EvaluationModel, error) {
	var m model.EvaluationModel
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, storeErr(err)
	}
	return &m, nil
}

func (r *EvaluationRepository) ListModels(ctx context.Context, ownerID uint) ([]model.EvaluationModel, error) {
	var ms []model.EvaluationModel
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? OR owner_id = 0", ownerID).
		Order("created_at ASC").
		Find(&ms).Error
	return ms, storeErr(err)
}
