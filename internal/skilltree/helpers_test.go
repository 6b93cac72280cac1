package skilltree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"skilltree_backend/internal/model"
)

const treePath = "compositions/c1/skilltrees/t1"

// skill 按父路径构造一个技能记录，父路径为空表示根技能
func skill(id, parentPath string, order int) model.Skill {
	if parentPath == "" {
		parentPath = treePath
	}
	return model.Skill{
		UUIDBase:      model.UUIDBase{ID: id},
		Path:          JoinPath(parentPath, "skills", id),
		ParentPath:    parentPath,
		CompositionID: "c1",
		SkilltreeID:   "t1",
		Title:         "skill " + id,
		Order:         order,
		Weight:        1,
		GradeSkill:    model.GradeSkillDefault,
	}
}

func annotate(t *testing.T, skills ...model.Skill) []Record {
	t.Helper()
	recs, err := Annotate(skills)
	require.NoError(t, err)
	return recs
}

// sampleSkills: a -> [a1 -> [a1x], a2], b
func sampleSkills() []model.Skill {
	a := skill("a", "", 0)
	a1 := skill("a1", a.Path, 0)
	a2 := skill("a2", a.Path, 1)
	a1x := skill("a1x", a1.Path, 0)
	b := skill("b", "", 1)
	// 故意打乱输入顺序
	return []model.Skill{a2, b, a1x, a, a1}
}

func ids(nodes []*TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID())
	}
	return out
}
