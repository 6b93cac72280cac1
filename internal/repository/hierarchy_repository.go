package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"

	"gorm.io/gorm"
)

// HierarchyRepository 以存储路径寻址组合、技能树和技能，供排序和级联删除使用
type HierarchyRepository struct {
	DB *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) *HierarchyRepository {
	return &HierarchyRepository{DB: db}
}

type pathKind int

const (
	kindComposition pathKind = iota
	kindSkilltree
	kindSkill
)

// classify 返回路径最后一段的集合类型以及记录 ID
func classify(path string) (pathKind, string, error) {
	segments := strings.Split(strings.Trim(path, skilltree.PathSeparator), skilltree.PathSeparator)
	if len(segments) < 2 || len(segments)%2 != 0 {
		return 0, "", fmt.Errorf("%w: %q", skilltree.ErrMalformedPath, path)
	}
	id := segments[len(segments)-1]
	switch segments[len(segments)-2] {
	case model.CollectionCompositions:
		return kindComposition, id, nil
	case model.CollectionSkilltrees:
		return kindSkilltree, id, nil
	case model.CollectionSkills:
		return kindSkill, id, nil
	}
	return 0, "", fmt.Errorf("%w: %q", skilltree.ErrMalformedPath, path)
}

// siblingTable 返回 parentPath 下子记录所在的表
func siblingTable(parentPath string) (interface{}, string, error) {
	kind, id, err := classify(parentPath)
	if err != nil {
		return nil, "", err
	}
	if kind == kindComposition {
		return &model.Skilltree{}, id, nil
	}
	return &model.Skill{}, id, nil
}

func (r *HierarchyRepository) siblingQuery(ctx context.Context, parentPath string) (*gorm.DB, error) {
	table, id, err := siblingTable(parentPath)
	if err != nil {
		return nil, err
	}
	q := r.DB.WithContext(ctx).Model(table)
	if _, ok := table.(*model.Skilltree); ok {
		return q.Where("composition_id = ?", id), nil
	}
	return q.Where("parent_path = ?", strings.Trim(parentPath, skilltree.PathSeparator)), nil
}

type siblingRow struct {
	ID        string
	Path      string
	Order     int `gorm:"column:order"`
	CreatedAt time.Time
}

func (r *HierarchyRepository) ListSiblings(ctx context.Context, parentPath string) ([]skilltree.Sibling, error) {
	q, err := r.siblingQuery(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	columns := []string{"id", "path", "`order`", "created_at"}
	_, isSkilltree := q.Statement.Model.(*model.Skilltree)
	if isSkilltree {
		// 技能树表没有 path 列，路径由父路径拼出
		columns = []string{"id", "`order`", "created_at"}
	}
	var rows []siblingRow
	err = q.Select(columns).Order("`order` ASC, created_at ASC, id ASC").Scan(&rows).Error
	if err != nil {
		return nil, storeErr(err)
	}

	out := make([]skilltree.Sibling, 0, len(rows))
	for _, row := range rows {
		path := row.Path
		if isSkilltree {
			path = skilltree.JoinPath(parentPath, model.CollectionSkilltrees, row.ID)
		}
		out = append(out, skilltree.Sibling{ID: row.ID, Path: path, Order: row.Order, CreatedAt: row.CreatedAt.UnixNano()})
	}
	return out, nil
}

func (r *HierarchyRepository) CountSiblings(ctx context.Context, parentPath string) (int, error) {
	q, err := r.siblingQuery(ctx, parentPath)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, storeErr(err)
	}
	return int(count), nil
}

// SwapOrder 在一个事务里交换两个兄弟节点的 order。
// 每条更新都带上读取时的 order 作为条件，任一条件不成立说明期间有并发修改，整体回滚。
func (r *HierarchyRepository) SwapOrder(ctx context.Context, parentPath string, a, b skilltree.Sibling) error {
	table, _, err := siblingTable(parentPath)
	if err != nil {
		return err
	}
	return storeErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := casOrder(tx, table, a.ID, a.Order, b.Order); err != nil {
			return err
		}
		return casOrder(tx, table, b.ID, b.Order, a.Order)
	}))
}

func casOrder(tx *gorm.DB, table interface{}, id string, expected, next int) error {
	res := tx.Model(table).Where("id = ? AND `order` = ?", id, expected).Update("order", next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("%w: %s expected order %d", skilltree.ErrOrderConflict, id, expected)
	}
	return nil
}

func (r *HierarchyRepository) ApplyOrderChanges(ctx context.Context, parentPath string, changes []skilltree.OrderChange) error {
	if len(changes) == 0 {
		return nil
	}
	table, _, err := siblingTable(parentPath)
	if err != nil {
		return err
	}
	return storeErr(r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			if err := casOrder(tx, table, c.ID, c.OldOrder, c.NewOrder); err != nil {
				return err
			}
		}
		return nil
	}))
}

// ListChildPaths 按 order 升序列出直接子记录的路径，路径不存在时返回空列表
func (r *HierarchyRepository) ListChildPaths(ctx context.Context, path string) ([]string, error) {
	siblings, err := r.ListSiblings(ctx, path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(siblings))
	for _, s := range siblings {
		paths = append(paths, s.Path)
	}
	return paths, nil
}

// DeleteByPath 删除单条记录（不含子记录）。记录不存在视为成功。
func (r *HierarchyRepository) DeleteByPath(ctx context.Context, path string) error {
	kind, id, err := classify(path)
	if err != nil {
		return err
	}
	db := r.DB.WithContext(ctx)
	switch kind {
	case kindComposition:
		return storeErr(db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("composition_id = ?", id).Delete(&model.SkillCompletion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("composition_id = ?", id).Delete(&model.Evaluation{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).Delete(&model.Composition{}).Error
		}))
	case kindSkilltree:
		return storeErr(db.Where("id = ?", id).Delete(&model.Skilltree{}).Error)
	default:
		return storeErr(db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("skill_id = ?", id).Delete(&model.SkillCompletion{}).Error; err != nil {
				return err
			}
			if err := tx.Where("skill_id = ?", id).Delete(&model.Evaluation{}).Error; err != nil {
				return err
			}
			return tx.Where("path = ?", strings.Trim(path, skilltree.PathSeparator)).Delete(&model.Skill{}).Error
		}))
	}
}
