package repository

import (
	"context"

	"skilltree_backend/internal/model"

	"gorm.io/gorm"
)

type CompositionRepository struct {
	DB *gorm.DB
}

func NewCompositionRepository(db *gorm.DB) *CompositionRepository {
	return &CompositionRepository{DB: db}
}

func (r *CompositionRepository) Create(ctx context.Context, c *model.Composition) error {
	return storeErr(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *CompositionRepository) FindByID(ctx context.Context, id string) (*model.Composition, error) {
	var c model.Composition
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, storeErr(err)
	}
	return &c, nil
}

// ListVisible 返回用户拥有的组合以及公开分享的组合
func (r *CompositionRepository) ListVisible(ctx context.Context, userID uint) ([]model.Composition, error) {
	var cs []model.Composition
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? OR shared_public = ?", userID, true).
		Order("created_at DESC").
		Find(&cs).Error
	return cs, storeErr(err)
}

func (r *CompositionRepository) Update(ctx context.Context, c *model.Composition) error {
	return storeErr(r.DB.WithContext(ctx).Model(&model.Composition{}).
		Where("id = ?", c.ID).
		Select("title", "organization_id", "shared_public", "can_copy", "grade_all_by_default", "evaluation_model_id").
		Updates(c).Error)
}
