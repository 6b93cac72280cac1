package service

import (
	"context"
	"fmt"

	"skilltree_backend/internal/model"
	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/tracing"
)

type EvaluationService struct {
	Evaluations  EvaluationStore
	Compositions CompositionStore
	Skilltrees   SkilltreeStore
	Skills       *SkillService
}

func NewEvaluationService(evaluations EvaluationStore, compositions CompositionStore, skilltrees SkilltreeStore, skills *SkillService) *EvaluationService {
	return &EvaluationService{
		Evaluations:  evaluations,
		Compositions: compositions,
		Skilltrees:   skilltrees,
		Skills:       skills,
	}
}

type EvaluationModelRequest struct {
	Title        string                   `json:"title" binding:"required"`
	Type         model.EvaluationType     `json:"type" binding:"required,oneof=numerical percentage letter"`
	Minimum      float64                  `json:"minimum"`
	Maximum      float64                  `json:"maximum"`
	PassLevel    float64                  `json:"passLevel"`
	Options      []model.EvaluationOption `json:"options"`
	RepeatOption bool                     `json:"repeatOption"`
}

type EvaluationRequest struct {
	StudentID  uint     `json:"studentId" binding:"required"`
	SkillPath  string   `json:"skillPath" binding:"required"`
	Grade      *float64 `json:"grade"`
	Percentage *float64 `json:"percentage" binding:"omitempty,min=0,max=100"`
	Letter     string   `json:"letter"`
	Repeat     bool     `json:"repeat"`
	Comment    string   `json:"comment"`
}

// GradeReport 学生在一个组合内的评分汇总
type GradeReport struct {
	CompositionID string                                 `json:"compositionId"`
	StudentID     uint                                   `json:"studentId"`
	Model         *model.EvaluationModel                 `json:"model"`
	Overall       *skilltree.EvaluationResult            `json:"overall"`
	Skilltrees    map[string]*skilltree.EvaluationResult `json:"skilltrees"`
	Skills        map[string]*skilltree.EvaluationResult `json:"skills"`
}

func (s *EvaluationService) CreateModel(ctx context.Context, ownerID uint, req EvaluationModelRequest) (*model.EvaluationModel, error) {
	if req.Type == model.EvaluationLetter && len(req.Options) == 0 {
		return nil, fmt.Errorf("%w: letter models need options", skilltree.ErrIncompleteInput)
	}
	if req.Type == model.EvaluationNumerical && req.Maximum < req.Minimum {
		return nil, fmt.Errorf("%w: maximum below minimum", skilltree.ErrIncompleteInput)
	}
	m := &model.EvaluationModel{
		UUIDBase:     model.UUIDBase{ID: model.GenerateUUID()},
		OwnerID:      ownerID,
		Title:        req.Title,
		Type:         req.Type,
		Minimum:      req.Minimum,
		Maximum:      req.Maximum,
		PassLevel:    req.PassLevel,
		Options:      req.Options,
		RepeatOption: req.RepeatOption,
	}
	if err := s.Evaluations.CreateModel(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *EvaluationService) ListModels(ctx context.Context, ownerID uint) ([]model.EvaluationModel, error) {
	return s.Evaluations.ListModels(ctx, ownerID)
}

func (s *EvaluationService) compositionModel(ctx context.Context, compositionID string) (*model.Composition, *model.EvaluationModel, error) {
	c, err := s.Compositions.FindByID(ctx, compositionID)
	if err != nil {
		return nil, nil, err
	}
	if c.EvaluationModelID == nil || *c.EvaluationModelID == "" {
		return c, nil, nil
	}
	em, err := s.Evaluations.FindModelByID(ctx, *c.EvaluationModelID)
	if err != nil {
		return nil, nil, err
	}
	return c, em, nil
}

// RecordEvaluation 老师给学生的某个技能打分；缺少任何必需的 ID 时不会写入
func (s *EvaluationService) RecordEvaluation(ctx context.Context, teacherID uint, req EvaluationRequest) (*model.Evaluation, error) {
	if teacherID == 0 || req.StudentID == 0 {
		return nil, fmt.Errorf("%w: teacher and student are required", skilltree.ErrIncompleteInput)
	}
	loc, err := skilltree.ParseLocation(req.SkillPath)
	if err != nil {
		return nil, err
	}
	if !loc.IsSkill() {
		return nil, fmt.Errorf("%w: %s is not a skill", skilltree.ErrIncompleteInput, req.SkillPath)
	}
	if _, err := s.Skills.GetSkill(ctx, loc.Path); err != nil {
		return nil, err
	}
	_, em, err := s.compositionModel(ctx, loc.CompositionID)
	if err != nil {
		return nil, err
	}
	if em == nil {
		return nil, fmt.Errorf("%w: composition has no evaluation model", skilltree.ErrIncompleteInput)
	}

	ev := &model.Evaluation{
		UUIDBase:          model.UUIDBase{ID: model.GenerateUUID()},
		StudentID:         req.StudentID,
		TeacherID:         teacherID,
		CompositionID:     loc.CompositionID,
		SkilltreeID:       loc.SkilltreeID,
		SkillID:           loc.SkillID,
		EvaluationModelID: em.ID,
		Repeat:            req.Repeat,
		Comment:           req.Comment,
	}
	if err := fillEvaluationValue(ev, em, req); err != nil {
		return nil, err
	}
	if err := s.Evaluations.Create(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

func fillEvaluationValue(ev *model.Evaluation, em *model.EvaluationModel, req EvaluationRequest) error {
	if req.Repeat {
		if !em.RepeatOption {
			return fmt.Errorf("%w: evaluation model does not allow repeat", skilltree.ErrIncompleteInput)
		}
		return nil
	}
	switch em.Type {
	case model.EvaluationNumerical:
		if req.Grade == nil {
			return fmt.Errorf("%w: grade is required", skilltree.ErrIncompleteInput)
		}
		ev.Grade = req.Grade
	case model.EvaluationPercentage:
		if req.Percentage == nil {
			return fmt.Errorf("%w: percentage is required", skilltree.ErrIncompleteInput)
		}
		ev.Percentage = req.Percentage
	case model.EvaluationLetter:
		opt := skilltree.FindOption(em.Options, req.Letter)
		if opt == nil {
			return fmt.Errorf("%w: unknown letter %q", skilltree.ErrIncompleteInput, req.Letter)
		}
		ev.Letter = opt.Letter
	}
	return nil
}

// StudentGrades 汇总学生在组合内的评分：整体、每棵技能树以及每个技能子树
func (s *EvaluationService) StudentGrades(ctx context.Context, studentID uint, compositionID string) (*GradeReport, error) {
	ctx, span := tracing.Tracer.Start(ctx, "EvaluationService.StudentGrades")
	defer span.End()

	c, em, err := s.compositionModel(ctx, compositionID)
	if err != nil {
		return nil, err
	}
	report := &GradeReport{
		CompositionID: compositionID,
		StudentID:     studentID,
		Model:         em,
		Skilltrees:    map[string]*skilltree.EvaluationResult{},
		Skills:        map[string]*skilltree.EvaluationResult{},
	}
	if em == nil {
		return report, nil
	}

	evals, err := s.Evaluations.ListLatestByStudent(ctx, studentID, compositionID)
	if err != nil {
		return nil, err
	}
	trees, err := s.Skilltrees.ListByComposition(ctx, compositionID)
	if err != nil {
		return nil, err
	}

	var allSkills []model.Skill
	for _, t := range trees {
		res, err := s.Skills.BuildForest(ctx, t.ID, skilltree.ModeEditing)
		if err != nil {
			return nil, err
		}
		var treeSkills []model.Skill
		for _, root := range res.Forest {
			root.Walk(func(n *skilltree.TreeNode) bool {
				treeSkills = append(treeSkills, n.Record.Skill)
				return true
			})
		}
		allSkills = append(allSkills, treeSkills...)
		if r := skilltree.AverageGrade(evals, treeSkills, em, c.GradeAllByDefault); r != nil {
			report.Skilltrees[t.ID] = r
		}
		for id, r := range skilltree.SubtreeGrades(res.Forest, evals, em, c.GradeAllByDefault) {
			report.Skills[id] = r
		}
	}
	report.Overall = skilltree.AverageGrade(evals, allSkills, em, c.GradeAllByDefault)
	return report, nil
}
