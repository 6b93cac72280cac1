package service

import (
	"context"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"
)

// 服务层依赖的存储接口，由 repository 包中的 gorm/redis 实现

type SkillStore interface {
	Create(ctx context.Context, skill *model.Skill) error
	CreateBatch(ctx context.Context, skills []model.Skill) error
	FindByPath(ctx context.Context, path string) (*model.Skill, error)
	ListChildren(ctx context.Context, parentPath string) ([]model.Skill, error)
	ListBySkilltree(ctx context.Context, skilltreeID string) ([]model.Skill, error)
	ListByComposition(ctx context.Context, compositionID string) ([]model.Skill, error)
	Update(ctx context.Context, skill *model.Skill) error
}

// OrderStore 维护同一父路径下兄弟记录的 order
type OrderStore interface {
	ListSiblings(ctx context.Context, parentPath string) ([]skilltree.Sibling, error)
	CountSiblings(ctx context.Context, parentPath string) (int, error)
	SwapOrder(ctx context.Context, parentPath string, a, b skilltree.Sibling) error
	ApplyOrderChanges(ctx context.Context, parentPath string, changes []skilltree.OrderChange) error
}

// PathStore 按路径列出子记录和删除单条记录
type PathStore interface {
	ListChildPaths(ctx context.Context, path string) ([]string, error)
	DeleteByPath(ctx context.Context, path string) error
}

type CompositionStore interface {
	Create(ctx context.Context, c *model.Composition) error
	FindByID(ctx context.Context, id string) (*model.Composition, error)
	ListVisible(ctx context.Context, userID uint) ([]model.Composition, error)
	Update(ctx context.Context, c *model.Composition) error
}

type SkilltreeStore interface {
	Create(ctx context.Context, t *model.Skilltree) error
	FindByID(ctx context.Context, id string) (*model.Skilltree, error)
	ListByComposition(ctx context.Context, compositionID string) ([]model.Skilltree, error)
	Update(ctx context.Context, t *model.Skilltree) error
}

type CompletionStore interface {
	Upsert(ctx context.Context, c *model.SkillCompletion) error
	ListByUserAndComposition(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, error)
}

// CompletionCache 可选的完成状态缓存，为 nil 时直接读库
type CompletionCache interface {
	Get(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, bool, error)
	Set(ctx context.Context, userID uint, compositionID string, cs []model.SkillCompletion) error
	Invalidate(ctx context.Context, userID uint, compositionID string) error
	Publish(ctx context.Context, change model.SkillCompletion) error
	Subscribe(ctx context.Context, compositionID string, handler func(model.SkillCompletion)) (func(), error)
}

type EvaluationStore interface {
	Create(ctx context.Context, e *model.Evaluation) error
	ListLatestByStudent(ctx context.Context, studentID uint, compositionID string) ([]model.Evaluation, error)
	CreateModel(ctx context.Context, m *model.EvaluationModel) error
	FindModelByID(ctx context.Context, id string) (*model.EvaluationModel, error)
	ListModels(ctx context.Context, ownerID uint) ([]model.EvaluationModel, error)
}

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdateLastLogin(userID uint) error
}
