package skilltree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skilltree_backend/internal/model"
)

func TestFlatten_PreOrderWithAncestry(t *testing.T) {
	res := Build(annotate(t, sampleSkills()...), BuildOptions{Mode: ModeEditing})
	flat := Flatten(res.Forest[0], nil)

	require.Len(t, flat, 4)
	assert.Equal(t, []string{"a", "a1", "a1x", "a2"}, []string{flat[0].ID, flat[1].ID, flat[2].ID, flat[3].ID})
	assert.Empty(t, flat[0].Ancestry)
	assert.Equal(t, 2, flat[0].CountChildren)
	assert.Equal(t, []Ancestor{{ParentID: "a", ChildIndex: 0}}, flat[1].Ancestry)
	assert.Equal(t, []Ancestor{{ParentID: "a", ChildIndex: 0}, {ParentID: "a1", ChildIndex: 0}}, flat[2].Ancestry)
	assert.Equal(t, []Ancestor{{ParentID: "a", ChildIndex: 1}}, flat[3].Ancestry)
	assert.Equal(t, 1, flat[3].Skill.Order)
}

func TestFlatten_CarriesContent(t *testing.T) {
	decorate := func(rec Record, _ string) *RenderDecoration {
		return &RenderDecoration{Content: rec.Skill.ID + "!"}
	}
	res := Build(annotate(t, skill("a", "", 0)), BuildOptions{Mode: ModeViewing, Decorate: decorate})
	flat := Flatten(res.Forest[0], nil)
	require.Len(t, flat, 1)
	assert.Equal(t, "a!", flat[0].Content)
}

func TestFlatten_RoundTrip(t *testing.T) {
	original := sampleSkills()
	res := Build(annotate(t, original...), BuildOptions{Mode: ModeViewing})
	flat := FlattenForest(res.Forest)

	got := make([]model.Skill, 0, len(flat))
	for _, f := range flat {
		got = append(got, f.Skill)
	}
	byID := func(s []model.Skill) {
		sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
	}
	byID(original)
	byID(got)
	assert.Equal(t, original, got)
}

func TestMaterialize_RebuildsPaths(t *testing.T) {
	root := &TreeNode{Record: Record{Skill: model.Skill{UUIDBase: model.UUIDBase{ID: "r"}, Title: "Root"}}}
	root.Children = []*TreeNode{
		{Record: Record{Skill: model.Skill{UUIDBase: model.UUIDBase{ID: "x"}, Title: "X"}}},
		{Record: Record{Skill: model.Skill{UUIDBase: model.UUIDBase{ID: "y"}, Title: "Y"}}},
	}

	skills, err := Materialize(Flatten(root, nil), treePath)
	require.NoError(t, err)
	require.Len(t, skills, 3)

	assert.Equal(t, treePath+"/skills/r", skills[0].Path)
	assert.Equal(t, treePath, skills[0].ParentPath)
	assert.Equal(t, treePath+"/skills/r/skills/x", skills[1].Path)
	assert.Equal(t, treePath+"/skills/r/skills/y", skills[2].Path)
	assert.Equal(t, 0, skills[1].Order)
	assert.Equal(t, 1, skills[2].Order)
	assert.Equal(t, 1, skills[2].Depth)
	for _, s := range skills {
		assert.Equal(t, "c1", s.CompositionID)
		assert.Equal(t, "t1", s.SkilltreeID)
		assert.Equal(t, model.DefaultSkillWeight, s.Weight)
	}

	// 生成的路径必须能被重新构建成同一棵树
	rebuilt := Build(annotate(t, skills...), BuildOptions{})
	require.Len(t, rebuilt.Forest, 1)
	assert.Equal(t, []string{"x", "y"}, ids(rebuilt.Forest[0].Children))
}

func TestMaterialize_RequiresTitleAndSkilltreePath(t *testing.T) {
	_, err := Materialize([]FlatSkill{{ID: "a"}}, treePath)
	assert.ErrorIs(t, err, ErrIncompleteInput)

	_, err = Materialize([]FlatSkill{{ID: "a", Title: "A"}}, "compositions/c1")
	assert.ErrorIs(t, err, ErrMissingStructuralContext)
}
