package repository

import (
	"context"

	"skilltree_backend/internal/model"

	"gorm.io/gorm"
)

type SkilltreeRepository struct {
	DB *gorm.DB
}

func NewSkilltreeRepository(db *gorm.DB) *SkilltreeRepository {
	return &SkilltreeRepository{DB: db}
}

func (r *SkilltreeRepository) Create(ctx context.Context, t *model.Skilltree) error {
	return storeErr(r.DB.WithContext(ctx).Create(t).Error)
}

func (r *SkilltreeRepository) FindByID(ctx context.Context, id string) (*model.Skilltree, error) {
	var t model.Skilltree
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, storeErr(err)
	}
	return &t, nil
}

func (r *SkilltreeRepository) ListByComposition(ctx context.Context, compositionID string) ([]model.Skilltree, error) {
	var ts []model.Skilltree
	err := r.DB.WithContext(ctx).
		Where("composition_id = ?", compositionID).
		Order("`order` ASC, created_at ASC").
		Find(&ts).Error
	return ts, storeErr(err)
}

func (r *SkilltreeRepository) Update(ctx context.Context, t *model.Skilltree) error {
	return storeErr(r.DB.WithContext(ctx).Model(&model.Skilltree{}).
		Where("id = ?", t.ID).
		Select("title", "description", "collapsible").
		Updates(t).Error)
}
