package skilltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Empty(t *testing.T) {
	res := Build(nil, BuildOptions{Mode: ModeViewing})
	assert.NotNil(t, res.Forest)
	assert.Empty(t, res.Forest)
	assert.Empty(t, res.Orphans)
}

func TestBuild_NestsChildrenInOrder(t *testing.T) {
	res := Build(annotate(t, sampleSkills()...), BuildOptions{Mode: ModeEditing})

	require.Equal(t, []string{"a", "b"}, ids(res.Forest))
	a := res.Forest[0]
	require.Equal(t, []string{"a1", "a2"}, ids(a.Children))
	assert.Equal(t, []string{"a1x"}, ids(a.Children[0].Children))
	assert.Empty(t, res.Forest[1].Children)
	assert.Empty(t, res.Orphans)
	assert.Equal(t, 5, a.Size()+res.Forest[1].Size())
}

func TestBuild_EditingModeThreadsActions(t *testing.T) {
	called := false
	actions := &EditActions{Delete: func(*TreeNode) { called = true }}
	res := Build(annotate(t, sampleSkills()...), BuildOptions{Mode: ModeEditing, Actions: actions})

	for _, root := range res.Forest {
		root.Walk(func(n *TreeNode) bool {
			assert.True(t, n.Expanded)
			assert.Same(t, actions, n.Actions)
			assert.Nil(t, n.Decoration)
			return true
		})
	}
	assert.False(t, called, "builder must not invoke the callbacks")
}

func TestBuild_ViewingModeDecoratesAndInheritsDirection(t *testing.T) {
	decorate := func(rec Record, parentDirection string) *RenderDecoration {
		d := &RenderDecoration{Content: map[string]string{"title": rec.Skill.Title}}
		if rec.Skill.ID == "a" {
			d.Direction = "left"
		}
		return d
	}
	res := Build(annotate(t, sampleSkills()...), BuildOptions{Mode: ModeViewing, Decorate: decorate})

	a, b := res.Forest[0], res.Forest[1]
	assert.Equal(t, "left", a.Decoration.Direction)
	assert.Equal(t, "left", a.Children[0].Decoration.Direction)
	assert.Equal(t, "left", a.Children[0].Children[0].Decoration.Direction)
	assert.Equal(t, DefaultDirection, b.Decoration.Direction)
	assert.Equal(t, map[string]string{"title": "skill b"}, b.Decoration.Content)
	assert.False(t, a.Expanded)
}

func TestBuild_ViewingModeWithoutDecorator(t *testing.T) {
	res := Build(annotate(t, skill("a", "", 0)), BuildOptions{Mode: ModeViewing})
	require.Len(t, res.Forest, 1)
	assert.Equal(t, DefaultDirection, res.Forest[0].Decoration.Direction)
}

func TestBuild_DropsOrphans(t *testing.T) {
	a := skill("a", "", 0)
	ghost := skill("ghost", "", 1)
	orphan := skill("orphan", ghost.Path, 0)
	orphanChild := skill("orphan-child", orphan.Path, 0)

	res := Build(annotate(t, a, orphan, orphanChild), BuildOptions{Mode: ModeEditing})

	assert.Equal(t, []string{"a"}, ids(res.Forest))
	assert.Empty(t, res.Forest[0].Children)
	require.Len(t, res.Orphans, 2)
	seen := map[string]bool{}
	for _, root := range res.Forest {
		root.Walk(func(n *TreeNode) bool {
			seen[n.ID()] = true
			return true
		})
	}
	assert.False(t, seen["orphan"])
	assert.False(t, seen["orphan-child"])
}

func TestBuild_NoRecordTwice(t *testing.T) {
	a := skill("a", "", 0)
	res := Build(annotate(t, a, a), BuildOptions{})
	assert.Len(t, res.Forest, 1)
}

func TestBuild_SubtreeInputRootedAtRootPath(t *testing.T) {
	a := skill("a", "", 0)
	a1 := skill("a1", a.Path, 0)
	a1x := skill("a1x", a1.Path, 0)
	a1y := skill("a1y", a1.Path, 1)

	res := Build(annotate(t, a1y, a1x, a1), BuildOptions{RootPath: a.Path})
	require.Equal(t, []string{"a1"}, ids(res.Forest))
	assert.Equal(t, []string{"a1x", "a1y"}, ids(res.Forest[0].Children))
	assert.Empty(t, res.Orphans)
}

func TestBuild_StrayRecordsWithoutRootAreOrphans(t *testing.T) {
	ghostA := skill("ghostA", "", 0)
	ghostB := skill("ghostB", "", 1)
	o1 := skill("o1", ghostA.Path, 0)
	o2 := skill("o2", ghostB.Path, 0)

	res := Build(annotate(t, o1, o2), BuildOptions{Mode: ModeViewing})
	assert.Empty(t, res.Forest)
	require.Len(t, res.Orphans, 2)

	// 显式给出技能树路径时结果相同
	res = Build(annotate(t, o1, o2), BuildOptions{RootPath: treePath})
	assert.Empty(t, res.Forest)
	assert.Len(t, res.Orphans, 2)
}

func TestBuild_SubtreeInputWithStrayRecord(t *testing.T) {
	a := skill("a", "", 0)
	a1 := skill("a1", a.Path, 0)
	a1x := skill("a1x", a1.Path, 0)
	ghost := skill("ghost", a.Path, 1)
	stray := skill("stray", ghost.Path, 0)

	res := Build(annotate(t, a1, a1x, stray), BuildOptions{RootPath: a.Path})
	require.Equal(t, []string{"a1"}, ids(res.Forest))
	require.Len(t, res.Orphans, 1)
	assert.Equal(t, "stray", res.Orphans[0].Skill.ID)
}
