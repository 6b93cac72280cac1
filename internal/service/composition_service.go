package service

import (
	"context"
	"fmt"
	"strings"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"

	"go.uber.org/zap"
)

type CompositionService struct {
	Compositions CompositionStore
	Skilltrees   SkilltreeStore
	Skills       *SkillService
	Orders       *OrderManager
	Deleter      *DeletionService
	Seed         []SeedSkill
}

func NewCompositionService(compositions CompositionStore, skilltrees SkilltreeStore, skills *SkillService, orders *OrderManager, deleter *DeletionService, seed []SeedSkill) *CompositionService {
	if len(seed) == 0 {
		seed = DefaultSeed()
	}
	return &CompositionService{
		Compositions: compositions,
		Skilltrees:   skilltrees,
		Skills:       skills,
		Orders:       orders,
		Deleter:      deleter,
		Seed:         seed,
	}
}

type CompositionRequest struct {
	Title             string  `json:"title" binding:"required"`
	OrganizationID    string  `json:"organizationId"`
	SharedPublic      bool    `json:"sharedPublic"`
	CanCopy           bool    `json:"canCopy"`
	GradeAllByDefault *bool   `json:"gradeAllByDefault"`
	EvaluationModelID *string `json:"evaluationModelId"`
}

type SkilltreeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Collapsible *bool  `json:"collapsible"`
	WithExample bool   `json:"withExample"`
}

type CompositionDetail struct {
	model.Composition
	Skilltrees []model.Skilltree `json:"skilltrees"`
}

func applyCompositionRequest(c *model.Composition, req CompositionRequest) {
	c.Title = req.Title
	c.OrganizationID = req.OrganizationID
	c.SharedPublic = req.SharedPublic
	c.CanCopy = req.CanCopy
	if req.GradeAllByDefault != nil {
		c.GradeAllByDefault = *req.GradeAllByDefault
	}
	c.EvaluationModelID = req.EvaluationModelID
}

func (s *CompositionService) CreateComposition(ctx context.Context, ownerID uint, req CompositionRequest) (*model.Composition, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", skilltree.ErrIncompleteInput)
	}
	c := &model.Composition{
		UUIDBase:          model.UUIDBase{ID: model.GenerateUUID()},
		OwnerID:           ownerID,
		GradeAllByDefault: true,
	}
	applyCompositionRequest(c, req)
	if err := s.Compositions.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CompositionService) ListCompositions(ctx context.Context, userID uint) ([]model.Composition, error) {
	return s.Compositions.ListVisible(ctx, userID)
}

func (s *CompositionService) GetComposition(ctx context.Context, id string) (*CompositionDetail, error) {
	c, err := s.Compositions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	trees, err := s.Skilltrees.ListByComposition(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CompositionDetail{Composition: *c, Skilltrees: trees}, nil
}

func (s *CompositionService) UpdateComposition(ctx context.Context, id string, req CompositionRequest) (*model.Composition, error) {
	c, err := s.Compositions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCompositionRequest(c, req)
	if err := s.Compositions.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComposition 删除组合以及其下全部技能树和技能
func (s *CompositionService) DeleteComposition(ctx context.Context, id string) error {
	path := skilltree.JoinPath(model.CollectionCompositions, id)
	if err := s.Deleter.DeleteRecursively(ctx, path); err != nil {
		return err
	}
	logger.Log.Info("composition deleted", zap.String("compositionId", id))
	return nil
}

// CreateSkilltree 在组合末尾新建技能树，可选写入示例技能
func (s *CompositionService) CreateSkilltree(ctx context.Context, compositionID string, req SkilltreeRequest) (*model.Skilltree, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", skilltree.ErrIncompleteInput)
	}
	c, err := s.Compositions.FindByID(ctx, compositionID)
	if err != nil {
		return nil, err
	}
	order, err := s.Orders.AssignOrderOnCreate(ctx, c.Path())
	if err != nil {
		return nil, err
	}
	tree := &model.Skilltree{
		UUIDBase:      model.UUIDBase{ID: model.GenerateUUID()},
		CompositionID: c.ID,
		Title:         req.Title,
		Description:   req.Description,
		Order:         order,
		Collapsible:   true,
	}
	if req.Collapsible != nil {
		tree.Collapsible = *req.Collapsible
	}
	if err := s.Skilltrees.Create(ctx, tree); err != nil {
		return nil, err
	}

	if req.WithExample {
		if _, err := s.Skills.ImportForest(ctx, tree.Path(), SeedForest(s.Seed)); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func (s *CompositionService) UpdateSkilltree(ctx context.Context, id string, req SkilltreeRequest) (*model.Skilltree, error) {
	tree, err := s.Skilltrees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tree.Title = req.Title
	tree.Description = req.Description
	if req.Collapsible != nil {
		tree.Collapsible = *req.Collapsible
	}
	if err := s.Skilltrees.Update(ctx, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *CompositionService) MoveSkilltree(ctx context.Context, id string, dir skilltree.Direction) error {
	tree, err := s.Skilltrees.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.Orders.Move(ctx, skilltree.JoinPath(model.CollectionCompositions, tree.CompositionID), tree.ID, dir)
}

func (s *CompositionService) DeleteSkilltree(ctx context.Context, id string) error {
	tree, err := s.Skilltrees.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Deleter.DeleteRecursively(ctx, tree.Path()); err != nil {
		return err
	}
	_, err = s.Orders.Repair(ctx, skilltree.JoinPath(model.CollectionCompositions, tree.CompositionID), "delete")
	return err
}

// DeletePath 按路径层级删除组合、技能树或技能，删除技能树和技能后修复兄弟的 order
func (s *CompositionService) DeletePath(ctx context.Context, path string) error {
	segments := strings.Split(strings.Trim(path, skilltree.PathSeparator), skilltree.PathSeparator)
	if len(segments) == 2 && segments[0] == model.CollectionCompositions && segments[1] != "" {
		return s.DeleteComposition(ctx, segments[1])
	}
	loc, err := skilltree.ParseLocation(path)
	if err != nil {
		return err
	}
	if loc.IsSkill() {
		return s.Skills.DeleteSkill(ctx, loc.Path)
	}
	return s.DeleteSkilltree(ctx, loc.SkilltreeID)
}
