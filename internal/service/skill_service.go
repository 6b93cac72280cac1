package service

import (
	"context"
	"fmt"
	"sync"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"
	"skilltree_backend/pkg/monitoring"
	"skilltree_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type SkillService struct {
	Skills     SkillStore
	Skilltrees SkilltreeStore
	Orders     *OrderManager
	Deleter    *DeletionService

	mu  sync.RWMutex
	cfg config.SkilltreeConfig
}

func NewSkillService(skills SkillStore, skilltrees SkilltreeStore, orders *OrderManager, deleter *DeletionService, cfg config.SkilltreeConfig) *SkillService {
	return &SkillService{
		Skills:     skills,
		Skilltrees: skilltrees,
		Orders:     orders,
		Deleter:    deleter,
		cfg:        cfg,
	}
}

// UpdateConfig 配置热更新回调
func (s *SkillService) UpdateConfig(cfg config.SkilltreeConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *SkillService) config() config.SkilltreeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

type SkillRequest struct {
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description"`
	Optional    bool             `json:"optional"`
	Weight      int              `json:"weight" binding:"omitempty,min=1,max=10"`
	GradeSkill  model.GradeSkill `json:"gradeSkill" binding:"omitempty,gradeskill"`
	Links       []model.Link     `json:"links" binding:"omitempty,dive"`
}

type CreateSkillRequest struct {
	SkillRequest
	// ParentPath 为技能树路径时创建根技能，为技能路径时创建子技能
	ParentPath string `json:"parentPath" binding:"required"`
}

type TreeResponse struct {
	Skilltree *model.Skilltree     `json:"skilltree"`
	Forest    []*SkillNodeResponse `json:"forest"`
	Orphans   int                  `json:"orphans"`
}

// SkillNodeResponse 技能树节点的输出结构
type SkillNodeResponse struct {
	model.Skill
	Expanded   bool                        `json:"expanded,omitempty"`
	Decoration *skilltree.RenderDecoration `json:"decoration,omitempty"`
	Children   []*SkillNodeResponse        `json:"children"`
}

func toNodeResponses(nodes []*skilltree.TreeNode) []*SkillNodeResponse {
	out := make([]*SkillNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &SkillNodeResponse{
			Skill:      n.Record.Skill,
			Expanded:   n.Expanded,
			Decoration: n.Decoration,
			Children:   toNodeResponses(n.Children),
		})
	}
	return out
}

// SkillContent 查看模式下附加在节点上的展示内容
type SkillContent struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Links       []model.Link `json:"links,omitempty"`
	Optional    bool         `json:"optional"`
}

func decorateSkill(rec skilltree.Record, _ string) *skilltree.RenderDecoration {
	return &skilltree.RenderDecoration{
		Content: SkillContent{
			Title:       rec.Skill.Title,
			Description: rec.Skill.Description,
			Links:       rec.Skill.Links,
			Optional:    rec.Skill.Optional,
		},
	}
}

// BuildForest 读取一棵技能树的全部技能并组装成森林
func (s *SkillService) BuildForest(ctx context.Context, skilltreeID string, mode skilltree.ViewMode) (skilltree.BuildResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SkillService.BuildForest")
	defer span.End()
	span.SetAttributes(attribute.String("skilltree.id", skilltreeID))

	skills, err := s.Skills.ListBySkilltree(ctx, skilltreeID)
	if err != nil {
		return skilltree.BuildResult{}, err
	}
	if s.config().RepairOnRead {
		repaired, err := s.repairGroups(ctx, skills)
		if err != nil {
			return skilltree.BuildResult{}, err
		}
		if repaired {
			if skills, err = s.Skills.ListBySkilltree(ctx, skilltreeID); err != nil {
				return skilltree.BuildResult{}, err
			}
		}
	}

	records, err := skilltree.Annotate(skills)
	if err != nil {
		return skilltree.BuildResult{}, err
	}
	opts := skilltree.BuildOptions{Mode: mode}
	if len(records) > 0 {
		opts.RootPath = records[0].Location.SkilltreePath()
	}
	if mode == skilltree.ModeViewing {
		opts.Decorate = decorateSkill
	}
	res := skilltree.Build(records, opts)
	if len(res.Orphans) > 0 {
		monitoring.OrphanSkills.Add(float64(len(res.Orphans)))
		for _, o := range res.Orphans {
			logger.Log.Warn("orphan skill left out of tree",
				zap.String("skilltreeId", skilltreeID),
				zap.String("path", o.Location.Path))
		}
	}
	return res, nil
}

// repairGroups 检查每个兄弟分组的 order 是否连续，不连续的分组立即修复
func (s *SkillService) repairGroups(ctx context.Context, skills []model.Skill) (bool, error) {
	groups := make(map[string][]int)
	for _, sk := range skills {
		groups[sk.ParentPath] = append(groups[sk.ParentPath], sk.Order)
	}
	repaired := false
	for parent, orders := range groups {
		if skilltree.IsDense(orders) {
			continue
		}
		n, err := s.Orders.Repair(ctx, parent, "read")
		if err != nil {
			return false, err
		}
		repaired = repaired || n > 0
	}
	return repaired, nil
}

func (s *SkillService) GetTree(ctx context.Context, skilltreeID string, mode skilltree.ViewMode) (*TreeResponse, error) {
	tree, err := s.Skilltrees.FindByID(ctx, skilltreeID)
	if err != nil {
		return nil, err
	}
	res, err := s.BuildForest(ctx, skilltreeID, mode)
	if err != nil {
		return nil, err
	}
	return &TreeResponse{
		Skilltree: tree,
		Forest:    toNodeResponses(res.Forest),
		Orphans:   len(res.Orphans),
	}, nil
}

func (s *SkillService) GetSkill(ctx context.Context, path string) (*model.Skill, error) {
	return s.Skills.FindByPath(ctx, path)
}

// CreateSkill 在 ParentPath 下追加一个技能，order 为当前兄弟数量
func (s *SkillService) CreateSkill(ctx context.Context, req CreateSkillRequest) (*model.Skill, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SkillService.CreateSkill")
	defer span.End()

	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", skilltree.ErrIncompleteInput)
	}
	parent, err := skilltree.ParseLocation(req.ParentPath)
	if err != nil {
		return nil, err
	}

	depth := 0
	if parent.IsSkill() {
		if _, err := s.Skills.FindByPath(ctx, parent.Path); err != nil {
			return nil, err
		}
		depth = parent.Depth + 1
	} else {
		tree, err := s.Skilltrees.FindByID(ctx, parent.SkilltreeID)
		if err != nil {
			return nil, err
		}
		if tree.CompositionID != parent.CompositionID {
			return nil, fmt.Errorf("%w: skilltree %s does not belong to composition %s", skilltree.ErrMissingStructuralContext, tree.ID, parent.CompositionID)
		}
	}
	if max := s.config().MaxDepth; max > 0 && depth >= max {
		return nil, fmt.Errorf("%w: depth %d, limit %d", skilltree.ErrDepthLimitExceeded, depth, max)
	}

	order, err := s.Orders.AssignOrderOnCreate(ctx, parent.Path)
	if err != nil {
		return nil, err
	}

	id := model.GenerateUUID()
	skill := &model.Skill{
		UUIDBase:      model.UUIDBase{ID: id},
		Path:          parent.ChildPath(id),
		ParentPath:    parent.Path,
		CompositionID: parent.CompositionID,
		SkilltreeID:   parent.SkilltreeID,
		Depth:         depth,
		Order:         order,
	}
	applySkillRequest(skill, req.SkillRequest)

	if err := s.Skills.Create(ctx, skill); err != nil {
		return nil, err
	}
	logger.Log.Info("skill created", zap.String("path", skill.Path), zap.Int("order", order))
	return skill, nil
}

// CreateSibling 在 siblingPath 所在的兄弟分组末尾追加技能
func (s *SkillService) CreateSibling(ctx context.Context, siblingPath string, req SkillRequest) (*model.Skill, error) {
	loc, err := skilltree.ParseLocation(siblingPath)
	if err != nil {
		return nil, err
	}
	if !loc.IsSkill() {
		return nil, fmt.Errorf("%w: %s is not a skill", skilltree.ErrIncompleteInput, siblingPath)
	}
	return s.CreateSkill(ctx, CreateSkillRequest{SkillRequest: req, ParentPath: loc.ParentPath()})
}

func applySkillRequest(skill *model.Skill, req SkillRequest) {
	skill.Title = req.Title
	skill.Description = req.Description
	skill.Optional = req.Optional
	skill.Weight = req.Weight
	if skill.Weight == 0 {
		skill.Weight = model.DefaultSkillWeight
	}
	skill.GradeSkill = req.GradeSkill
	if skill.GradeSkill == "" {
		skill.GradeSkill = model.GradeSkillDefault
	}
	skill.Links = req.Links
}

func (s *SkillService) UpdateSkill(ctx context.Context, path string, req SkillRequest) (*model.Skill, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", skilltree.ErrIncompleteInput)
	}
	skill, err := s.Skills.FindByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	applySkillRequest(skill, req)
	if err := s.Skills.Update(ctx, skill); err != nil {
		return nil, err
	}
	return skill, nil
}

// MoveSkill 与相邻兄弟交换位置，已在边界时不做任何修改
func (s *SkillService) MoveSkill(ctx context.Context, path string, dir skilltree.Direction) error {
	loc, err := skilltree.ParseLocation(path)
	if err != nil {
		return err
	}
	if !loc.IsSkill() {
		return fmt.Errorf("%w: %s is not a skill", skilltree.ErrIncompleteInput, path)
	}
	return s.Orders.Move(ctx, loc.ParentPath(), loc.SkillID, dir)
}

// DeleteSkill 级联删除技能及其子树，然后修复剩余兄弟的 order
func (s *SkillService) DeleteSkill(ctx context.Context, path string) error {
	ctx, span := tracing.Tracer.Start(ctx, "SkillService.DeleteSkill")
	defer span.End()

	loc, err := skilltree.ParseLocation(path)
	if err != nil {
		return err
	}
	if !loc.IsSkill() {
		return fmt.Errorf("%w: %s is not a skill", skilltree.ErrIncompleteInput, path)
	}
	if err := s.Deleter.DeleteRecursively(ctx, loc.Path); err != nil {
		return err
	}
	_, err = s.Orders.Repair(ctx, loc.ParentPath(), "delete")
	return err
}

// FlattenSubtree 返回以 path 为根的子树展开结果
func (s *SkillService) FlattenSubtree(ctx context.Context, path string) ([]skilltree.FlatSkill, error) {
	loc, err := skilltree.ParseLocation(path)
	if err != nil {
		return nil, err
	}
	res, err := s.BuildForest(ctx, loc.SkilltreeID, skilltree.ModeEditing)
	if err != nil {
		return nil, err
	}
	if !loc.IsSkill() {
		return skilltree.FlattenForest(res.Forest), nil
	}
	var found *skilltree.TreeNode
	for _, root := range res.Forest {
		root.Walk(func(n *skilltree.TreeNode) bool {
			if n.Record.Location.Path == loc.Path {
				found = n
			}
			return found == nil
		})
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", skilltree.ErrNotFound, path)
	}
	return skilltree.Flatten(found, nil), nil
}

// ImportForest 把一组新技能作为根技能追加到技能树末尾
func (s *SkillService) ImportForest(ctx context.Context, skilltreePath string, forest []*skilltree.TreeNode) ([]model.Skill, error) {
	offset, err := s.Orders.AssignOrderOnCreate(ctx, skilltreePath)
	if err != nil {
		return nil, err
	}
	skills, err := skilltree.Materialize(skilltree.FlattenForest(forest), skilltreePath)
	if err != nil {
		return nil, err
	}
	for i := range skills {
		if skills[i].Depth == 0 {
			skills[i].Order += offset
		}
	}
	if max := s.config().MaxDepth; max > 0 {
		for _, sk := range skills {
			if sk.Depth >= max {
				return nil, fmt.Errorf("%w: depth %d, limit %d", skilltree.ErrDepthLimitExceeded, sk.Depth, max)
			}
		}
	}
	if err := s.Skills.CreateBatch(ctx, skills); err != nil {
		return nil, err
	}
	return skills, nil
}
