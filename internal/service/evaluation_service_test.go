package service

import (
	"context"
	"testing"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/model"
	"skilltree_backend/internal/service/servicetest"
	"skilltree_backend/internal/skilltree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func newEvaluationFixture(t *testing.T, em *model.EvaluationModel) (*fixture, *EvaluationService) {
	t.Helper()
	f := newFixture(config.SkilltreeConfig{})
	f.sampleTree()
	evals := servicetest.Evaluations{DB: f.db}
	if em != nil {
		require.NoError(t, evals.CreateModel(context.Background(), em))
		c := f.db.CompositionRows["c1"]
		c.EvaluationModelID = &em.ID
		f.db.CompositionRows["c1"] = c
	}
	return f, NewEvaluationService(evals, servicetest.Compositions{DB: f.db}, servicetest.Skilltrees{DB: f.db}, f.skills)
}

func numericalModel() *model.EvaluationModel {
	return &model.EvaluationModel{
		UUIDBase:     model.UUIDBase{ID: "em-num"},
		Title:        "1-10",
		Type:         model.EvaluationNumerical,
		Minimum:      1,
		Maximum:      10,
		PassLevel:    6,
		RepeatOption: true,
	}
}

func TestRecordEvaluationRequiresContext(t *testing.T) {
	_, svc := newEvaluationFixture(t, numericalModel())
	ctx := context.Background()

	_, err := svc.RecordEvaluation(ctx, 0, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root", Grade: float(7)})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)

	_, err = svc.RecordEvaluation(ctx, 1, EvaluationRequest{SkillPath: t1 + "/skills/root", Grade: float(7)})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)

	_, err = svc.RecordEvaluation(ctx, 1, EvaluationRequest{StudentID: 2, SkillPath: "skills/root", Grade: float(7)})
	assert.ErrorIs(t, err, skilltree.ErrMissingStructuralContext)

	_, err = svc.RecordEvaluation(ctx, 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root"})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)
}

func TestRecordEvaluationWithoutModel(t *testing.T) {
	_, svc := newEvaluationFixture(t, nil)

	_, err := svc.RecordEvaluation(context.Background(), 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root", Grade: float(7)})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)
}

func TestRecordEvaluationLetter(t *testing.T) {
	em := &model.EvaluationModel{
		UUIDBase: model.UUIDBase{ID: "em-letter"},
		Type:     model.EvaluationLetter,
		Options: model.EvaluationOptions{
			{Letter: "A", Value: 4, Minimum: 3.5, Maximum: 4, ValuePasses: true},
			{Letter: "F", Value: 0, Minimum: 0, Maximum: 1},
		},
	}
	f, svc := newEvaluationFixture(t, em)

	ev, err := svc.RecordEvaluation(context.Background(), 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root", Letter: "a"})
	require.NoError(t, err)
	assert.Equal(t, "A", ev.Letter)
	assert.Equal(t, "c1", ev.CompositionID)
	assert.Equal(t, "t1", ev.SkilltreeID)
	assert.Equal(t, "root", ev.SkillID)
	assert.Len(t, f.db.EvaluationRows, 1)

	_, err = svc.RecordEvaluation(context.Background(), 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root", Letter: "Z"})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)

	// 该模型不允许 repeat
	_, err = svc.RecordEvaluation(context.Background(), 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + "/skills/root", Repeat: true})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)
}

func TestStudentGrades(t *testing.T) {
	_, svc := newEvaluationFixture(t, numericalModel())
	ctx := context.Background()

	record := func(path string, grade float64) {
		_, err := svc.RecordEvaluation(ctx, 1, EvaluationRequest{StudentID: 2, SkillPath: t1 + path, Grade: float(grade)})
		require.NoError(t, err)
	}
	record("/skills/root/skills/child1", 4)
	record("/skills/root/skills/child1", 8)
	record("/skills/root/skills/child2", 4)

	report, err := svc.StudentGrades(ctx, 2, "c1")
	require.NoError(t, err)
	require.NotNil(t, report.Overall)
	assert.InDelta(t, 6, report.Overall.Value, 1e-9)
	assert.True(t, report.Overall.Passed)
	assert.Equal(t, 2, report.Overall.Count)

	require.Contains(t, report.Skilltrees, "t1")
	assert.InDelta(t, 6, report.Skilltrees["t1"].Value, 1e-9)

	require.Contains(t, report.Skills, "child1")
	assert.InDelta(t, 8, report.Skills["child1"].Value, 1e-9)
	assert.NotContains(t, report.Skills, "grandchild1")

	other, err := svc.StudentGrades(ctx, 99, "c1")
	require.NoError(t, err)
	assert.Nil(t, other.Overall)
}
