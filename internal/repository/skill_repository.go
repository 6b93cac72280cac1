package repository

import (
	"context"
	"errors"
	"fmt"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"

	"gorm.io/gorm"
)

type SkillRepository struct {
	DB *gorm.DB
}

func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{DB: db}
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return skilltree.ErrNotFound
	}
	if errors.Is(err, skilltree.ErrOrderConflict) {
		return err
	}
	return fmt.Errorf("%w: %v", skilltree.ErrStoreOperationFailed, err)
}

func (r *SkillRepository) Create(ctx context.Context, skill *model.Skill) error {
	return storeErr(r.DB.WithContext(ctx).Create(skill).Error)
}

// CreateBatch 在一个事务中写入整棵子树
func (r *SkillRepository) CreateBatch(ctx context.Context, skills []model.Skill) error {
	if len(skills) == 0 {
		return nil
	}
	return storeErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&skills, 100).Error
	}))
}

func (r *SkillRepository) FindByPath(ctx context.Context, path string) (*model.Skill, error) {
	var s model.Skill
	err := r.DB.WithContext(ctx).Where("path = ?", path).First(&s).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &s, nil
}

func (r *SkillRepository) FindByID(ctx context.Context, id string) (*model.Skill, error) {
	var s model.Skill
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &s, nil
}

func (r *SkillRepository) ListChildren(ctx context.Context, parentPath string) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.DB.WithContext(ctx).
		Where("parent_path = ?", parentPath).
		Order("`order` ASC, created_at ASC, id ASC").
		Find(&skills).Error
	return skills, storeErr(err)
}

func (r *SkillRepository) ListBySkilltree(ctx context.Context, skilltreeID string) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.DB.WithContext(ctx).
		Where("skilltree_id = ?", skilltreeID).
		Order("depth ASC, `order` ASC").
		Find(&skills).Error
	return skills, storeErr(err)
}

func (r *SkillRepository) ListByComposition(ctx context.Context, compositionID string) ([]model.Skill, error) {
	var skills []model.Skill
	err := r.DB.WithContext(ctx).
		Where("composition_id = ?", compositionID).
		Order("depth ASC, `order` ASC").
		Find(&skills).Error
	return skills, storeErr(err)
}

// Update 只更新可编辑字段，路径和 order 由专门的操作维护
func (r *SkillRepository) Update(ctx context.Context, skill *model.Skill) error {
	res := r.DB.WithContext(ctx).Model(&model.Skill{}).
		Where("id = ?", skill.ID).
		Select("title", "description", "optional", "weight", "grade_skill", "links").
		Updates(skill)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return skilltree.ErrNotFound
	}
	return nil
}
