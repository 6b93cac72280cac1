package service

import (
	"context"
	"testing"

	"skilltree_backend/internal/config"
	"skilltree_backend/internal/skilltree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSkilltreeWithExample(t *testing.T) {
	f := newFixture(config.SkilltreeConfig{})
	ctx := context.Background()

	c, err := f.compositions.CreateComposition(ctx, 1, CompositionRequest{Title: "Maths"})
	require.NoError(t, err)
	assert.True(t, c.GradeAllByDefault)

	first, err := f.compositions.CreateSkilltree(ctx, c.ID, SkilltreeRequest{Title: "Algebra", WithExample: true})
	require.NoError(t, err)
	second, err := f.compositions.CreateSkilltree(ctx, c.ID, SkilltreeRequest{Title: "Geometry"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)
	assert.True(t, first.Collapsible)

	res, err := f.skills.BuildForest(ctx, first.ID, skilltree.ModeEditing)
	require.NoError(t, err)
	require.Len(t, res.Forest, 1)
	root := res.Forest[0]
	assert.Equal(t, "Example skill", root.Record.Skill.Title)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 0, root.Children[0].Record.Skill.Order)
	assert.Equal(t, 1, root.Children[1].Record.Skill.Order)

	empty, err := f.skills.BuildForest(ctx, second.ID, skilltree.ModeEditing)
	require.NoError(t, err)
	assert.Empty(t, empty.Forest)
}

func TestCreateSkilltreeUnknownComposition(t *testing.T) {
	f := newFixture(config.SkilltreeConfig{})

	_, err := f.compositions.CreateSkilltree(context.Background(), "missing", SkilltreeRequest{Title: "x"})
	assert.ErrorIs(t, err, skilltree.ErrNotFound)

	_, err = f.compositions.CreateComposition(context.Background(), 1, CompositionRequest{})
	assert.ErrorIs(t, err, skilltree.ErrIncompleteInput)
}

func TestDeleteSkilltreeRepairsRemainingOrder(t *testing.T) {
	f := newFixture(config.SkilltreeConfig{})
	ctx := context.Background()
	f.sampleTree()
	f.addSkilltree("c1", "t2", 1)
	f.addSkilltree("c1", "t3", 2)

	require.NoError(t, f.compositions.DeleteSkilltree(ctx, "t1"))
	assert.Empty(t, f.db.SkillRows)

	detail, err := f.compositions.GetComposition(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, detail.Skilltrees, 2)
	assert.Equal(t, "t2", detail.Skilltrees[0].ID)
	assert.Equal(t, 0, detail.Skilltrees[0].Order)
	assert.Equal(t, 1, detail.Skilltrees[1].Order)
}

func TestDeletePathRepairsSiblingsAtEveryLevel(t *testing.T) {
	f := newFixture(config.SkilltreeConfig{})
	ctx := context.Background()
	tree := f.sampleTree()
	extra := f.addSkill(tree, "extra", 1)
	f.addSkilltree("c1", "t2", 1)

	// 技能：剩余兄弟重新从 0 编号
	require.NoError(t, f.compositions.DeletePath(ctx, tree+"/skills/root"))
	assert.Equal(t, 0, orderOf(f, extra))
	assert.NotContains(t, f.db.SkillRows, tree+"/skills/root/skills/child1")

	// 技能树
	require.NoError(t, f.compositions.DeletePath(ctx, tree))
	detail, err := f.compositions.GetComposition(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, detail.Skilltrees, 1)
	assert.Equal(t, 0, detail.Skilltrees[0].Order)

	// 组合
	require.NoError(t, f.compositions.DeletePath(ctx, "compositions/c1"))
	_, err = f.compositions.GetComposition(ctx, "c1")
	assert.ErrorIs(t, err, skilltree.ErrNotFound)

	assert.ErrorIs(t, f.compositions.DeletePath(ctx, "users/u1"), skilltree.ErrMissingStructuralContext)
}

func TestMoveSkilltree(t *testing.T) {
	f := newFixture(config.SkilltreeConfig{})
	ctx := context.Background()
	f.addComposition("c1")
	f.addSkilltree("c1", "t1", 0)
	f.addSkilltree("c1", "t2", 1)

	require.NoError(t, f.compositions.MoveSkilltree(ctx, "t2", skilltree.MoveUp))
	assert.Equal(t, 0, f.db.SkilltreeRows["t2"].Order)
	assert.Equal(t, 1, f.db.SkilltreeRows["t1"].Order)
}
