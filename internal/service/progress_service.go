package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"

	"go.uber.org/zap"
)

var ErrSubscriptionsUnavailable = errors.New("completion subscriptions need a cache backend")

// ProgressService 学生的技能完成状态
type ProgressService struct {
	Completions CompletionStore
	Skills      SkillStore
	Cache       CompletionCache
}

func NewProgressService(completions CompletionStore, skills SkillStore, cache CompletionCache) *ProgressService {
	return &ProgressService{Completions: completions, Skills: skills, Cache: cache}
}

type SetStatusRequest struct {
	Path   string            `json:"path" binding:"required"`
	Status model.SkillStatus `json:"status" binding:"required,oneof=locked unlocked selected"`
}

type ProgressSummary struct {
	CompositionID string         `json:"compositionId"`
	Selected      int            `json:"selected"`
	Total         int            `json:"total"`
	PerSkilltree  map[string]int `json:"perSkilltree"`
}

func (s *ProgressService) SetStatus(ctx context.Context, userID uint, req SetStatusRequest) (*model.SkillCompletion, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", skilltree.ErrIncompleteInput)
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", skilltree.ErrIncompleteInput, req.Status)
	}
	loc, err := skilltree.ParseLocation(req.Path)
	if err != nil {
		return nil, err
	}
	if !loc.IsSkill() {
		return nil, fmt.Errorf("%w: %s is not a skill", skilltree.ErrIncompleteInput, req.Path)
	}
	if _, err := s.Skills.FindByPath(ctx, loc.Path); err != nil {
		return nil, err
	}

	c := &model.SkillCompletion{
		UserID:        userID,
		CompositionID: loc.CompositionID,
		SkilltreeID:   loc.SkilltreeID,
		SkillID:       loc.SkillID,
		Status:        req.Status,
		UpdatedAt:     time.Now(),
	}
	if err := s.Completions.Upsert(ctx, c); err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, userID, loc.CompositionID); err != nil {
			logger.Log.Warn("completion cache invalidate failed", zap.Error(err))
		}
		if err := s.Cache.Publish(ctx, *c); err != nil {
			logger.Log.Warn("completion change publish failed", zap.Error(err))
		}
	}
	return c, nil
}

func (s *ProgressService) listCompletions(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, error) {
	if s.Cache != nil {
		cs, ok, err := s.Cache.Get(ctx, userID, compositionID)
		if err != nil {
			logger.Log.Warn("completion cache read failed", zap.Error(err))
		} else if ok {
			return cs, nil
		}
	}
	cs, err := s.Completions.ListByUserAndComposition(ctx, userID, compositionID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, userID, compositionID, cs); err != nil {
			logger.Log.Warn("completion cache write failed", zap.Error(err))
		}
	}
	return cs, nil
}

// CompletionMaps 返回用户在组合内每棵技能树上的完成状态
func (s *ProgressService) CompletionMaps(ctx context.Context, userID uint, compositionID string) (map[string]skilltree.CompletionMap, error) {
	cs, err := s.listCompletions(ctx, userID, compositionID)
	if err != nil {
		return nil, err
	}
	return skilltree.NewCompletionMaps(cs), nil
}

func (s *ProgressService) Summary(ctx context.Context, userID uint, compositionID string) (*ProgressSummary, error) {
	maps, err := s.CompletionMaps(ctx, userID, compositionID)
	if err != nil {
		return nil, err
	}
	skills, err := s.Skills.ListByComposition(ctx, compositionID)
	if err != nil {
		return nil, err
	}

	// 只统计仍然存在的技能
	existing := make(map[string]bool, len(skills))
	for _, sk := range skills {
		existing[sk.ID] = true
	}
	summary := &ProgressSummary{
		CompositionID: compositionID,
		Total:         len(skills),
		PerSkilltree:  make(map[string]int, len(maps)),
	}
	all := make([]skilltree.CompletionMap, 0, len(maps))
	for treeID, m := range maps {
		live := skilltree.CompletionMap{}
		for id, st := range m {
			if existing[id] {
				live[id] = st
			}
		}
		summary.PerSkilltree[treeID] = skilltree.CountSelected([]skilltree.CompletionMap{live})
		all = append(all, live)
	}
	summary.Selected = skilltree.CountSelected(all)
	return summary, nil
}

// Subscribe 订阅组合内的状态变更。调用方在视图销毁时必须调用一次返回的取消函数。
func (s *ProgressService) Subscribe(ctx context.Context, compositionID string, handler func(model.SkillCompletion)) (func(), error) {
	if s.Cache == nil {
		return nil, ErrSubscriptionsUnavailable
	}
	return s.Cache.Subscribe(ctx, compositionID, handler)
}
