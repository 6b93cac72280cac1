package repository

import (
	"context"
	"testing"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testTreePath = "compositions/c1/skilltrees/t1"

// 与 mysql 表结构对应的最小 sqlite 表
var testSchema = []string{
	"CREATE TABLE compositions (id TEXT PRIMARY KEY, created_at DATETIME, updated_at DATETIME, title TEXT NOT NULL, owner_id INTEGER, organization_id TEXT, shared_public NUMERIC DEFAULT false, can_copy NUMERIC DEFAULT false, grade_all_by_default NUMERIC DEFAULT true, evaluation_model_id TEXT)",
	"CREATE TABLE skilltrees (id TEXT PRIMARY KEY, created_at DATETIME, updated_at DATETIME, composition_id TEXT NOT NULL, title TEXT NOT NULL, description TEXT, `order` INTEGER DEFAULT 0, collapsible NUMERIC DEFAULT true)",
	"CREATE TABLE skills (id TEXT PRIMARY KEY, created_at DATETIME, updated_at DATETIME, path TEXT NOT NULL UNIQUE, parent_path TEXT NOT NULL, composition_id TEXT NOT NULL, skilltree_id TEXT NOT NULL, depth INTEGER DEFAULT 0, title TEXT NOT NULL, description TEXT, `order` INTEGER DEFAULT 0, optional NUMERIC DEFAULT false, weight INTEGER DEFAULT 1, grade_skill TEXT DEFAULT 'default', links TEXT)",
	"CREATE TABLE skill_completions (id INTEGER PRIMARY KEY AUTOINCREMENT, user_id INTEGER NOT NULL, composition_id TEXT NOT NULL, skilltree_id TEXT NOT NULL, skill_id TEXT NOT NULL, status TEXT NOT NULL, updated_at DATETIME)",
	"CREATE TABLE evaluations (id TEXT PRIMARY KEY, created_at DATETIME, updated_at DATETIME, student_id INTEGER NOT NULL, teacher_id INTEGER NOT NULL, composition_id TEXT NOT NULL, skilltree_id TEXT NOT NULL, skill_id TEXT NOT NULL, evaluation_model_id TEXT, grade REAL, percentage REAL, letter TEXT, `repeat` NUMERIC DEFAULT false, comment TEXT)",
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, ddl := range testSchema {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func putSkill(t *testing.T, db *gorm.DB, parentPath, id string, order int) model.Skill {
	t.Helper()
	s := model.Skill{
		UUIDBase:      model.UUIDBase{ID: id},
		Path:          skilltree.JoinPath(parentPath, model.CollectionSkills, id),
		ParentPath:    parentPath,
		CompositionID: "c1",
		SkilltreeID:   "t1",
		Title:         id,
		Order:         order,
		Weight:        1,
		GradeSkill:    model.GradeSkillDefault,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func skillOrder(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var s model.Skill
	require.NoError(t, db.Where("id = ?", id).First(&s).Error)
	return s.Order
}

func TestListSiblingsBuildsSkilltreePaths(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	require.NoError(t, db.Create(&model.Composition{UUIDBase: model.UUIDBase{ID: "c1"}, Title: "c1"}).Error)
	require.NoError(t, db.Create(&model.Skilltree{UUIDBase: model.UUIDBase{ID: "t2"}, CompositionID: "c1", Title: "t2", Order: 1}).Error)
	require.NoError(t, db.Create(&model.Skilltree{UUIDBase: model.UUIDBase{ID: "t1"}, CompositionID: "c1", Title: "t1", Order: 0}).Error)

	siblings, err := repo.ListSiblings(context.Background(), "compositions/c1")
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, "t1", siblings[0].ID)
	assert.Equal(t, "compositions/c1/skilltrees/t1", siblings[0].Path)
	assert.Equal(t, "compositions/c1/skilltrees/t2", siblings[1].Path)
	assert.Equal(t, 1, siblings[1].Order)

	count, err := repo.CountSiblings(context.Background(), "compositions/c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListSiblingsSkillsInOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	root := putSkill(t, db, testTreePath, "root", 0)
	putSkill(t, db, root.Path, "b", 1)
	putSkill(t, db, root.Path, "a", 0)
	putSkill(t, db, testTreePath, "other", 1)

	siblings, err := repo.ListSiblings(context.Background(), root.Path)
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, "a", siblings[0].ID)
	assert.Equal(t, root.Path+"/skills/a", siblings[0].Path)
	assert.Equal(t, "b", siblings[1].ID)

	paths, err := repo.ListChildPaths(context.Background(), "compositions/c1/skilltrees/missing")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestSwapOrderStaleOrderRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	ctx := context.Background()
	a := putSkill(t, db, testTreePath, "a", 0)
	b := putSkill(t, db, testTreePath, "b", 1)

	// b 的 order 已被其他请求改掉，第一条更新成功后第二条失败，整体回滚
	err := repo.SwapOrder(ctx, testTreePath,
		skilltree.Sibling{ID: a.ID, Path: a.Path, Order: 0},
		skilltree.Sibling{ID: b.ID, Path: b.Path, Order: 5})
	assert.ErrorIs(t, err, skilltree.ErrOrderConflict)
	assert.Equal(t, 0, skillOrder(t, db, "a"))
	assert.Equal(t, 1, skillOrder(t, db, "b"))

	require.NoError(t, repo.SwapOrder(ctx, testTreePath,
		skilltree.Sibling{ID: a.ID, Path: a.Path, Order: 0},
		skilltree.Sibling{ID: b.ID, Path: b.Path, Order: 1}))
	assert.Equal(t, 1, skillOrder(t, db, "a"))
	assert.Equal(t, 0, skillOrder(t, db, "b"))
}

func TestApplyOrderChanges(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	ctx := context.Background()
	putSkill(t, db, testTreePath, "a", 0)
	putSkill(t, db, testTreePath, "b", 3)
	putSkill(t, db, testTreePath, "c", 7)

	siblings, err := repo.ListSiblings(ctx, testTreePath)
	require.NoError(t, err)
	changes := skilltree.Densify(siblings)
	require.Len(t, changes, 2)

	// 过期的变更不写入任何一条
	stale := append([]skilltree.OrderChange(nil), changes...)
	stale[1].OldOrder = 99
	assert.ErrorIs(t, repo.ApplyOrderChanges(ctx, testTreePath, stale), skilltree.ErrOrderConflict)
	assert.Equal(t, 3, skillOrder(t, db, "b"))
	assert.Equal(t, 7, skillOrder(t, db, "c"))

	require.NoError(t, repo.ApplyOrderChanges(ctx, testTreePath, changes))
	assert.Equal(t, 0, skillOrder(t, db, "a"))
	assert.Equal(t, 1, skillOrder(t, db, "b"))
	assert.Equal(t, 2, skillOrder(t, db, "c"))
}

func TestDeleteByPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewHierarchyRepository(db)
	ctx := context.Background()
	a := putSkill(t, db, testTreePath, "a", 0)
	require.NoError(t, db.Create(&model.SkillCompletion{UserID: 1, CompositionID: "c1", SkilltreeID: "t1", SkillID: "a", Status: model.SkillSelected}).Error)

	assert.NoError(t, repo.DeleteByPath(ctx, testTreePath+"/skills/missing"))
	assert.NoError(t, repo.DeleteByPath(ctx, "compositions/nope"))

	require.NoError(t, repo.DeleteByPath(ctx, a.Path))
	var skills, completions int64
	db.Model(&model.Skill{}).Count(&skills)
	db.Model(&model.SkillCompletion{}).Count(&completions)
	assert.Zero(t, skills)
	assert.Zero(t, completions)

	assert.ErrorIs(t, repo.DeleteByPath(ctx, "users/u1"), skilltree.ErrMalformedPath)
}
