package skilltree

import (
	"fmt"
	"strings"

	"skilltree_backend/internal/model"
)

const PathSeparator = "/"

// Location 从存储路径解析出的结构信息，数据进入时计算一次，之后随记录传递
type Location struct {
	Path          string   `json:"path"`
	CompositionID string   `json:"compositionId"`
	SkilltreeID   string   `json:"skilltreeId"`
	SkillID       string   `json:"skillId,omitempty"`
	ParentChain   []string `json:"parentChain"`
	Depth         int      `json:"depth"`
}

// ParseLocation 解析 collection/id 交替排列的存储路径。
// ParentChain 为技能树与记录自身之间的 collection/id 对，根技能的链为空、深度为 0
func ParseLocation(path string) (Location, error) {
	trimmed := strings.Trim(path, PathSeparator)
	if trimmed == "" {
		return Location{}, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	segments := strings.Split(trimmed, PathSeparator)
	if len(segments)%2 != 0 {
		return Location{}, fmt.Errorf("%w: %q has an odd number of segments", ErrMalformedPath, path)
	}
	for _, seg := range segments {
		if seg == "" {
			return Location{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedPath, path)
		}
	}

	loc := Location{Path: trimmed}
	compositionAt, skilltreeAt := -1, -1
	for i := 0; i+1 < len(segments); i += 2 {
		switch segments[i] {
		case model.CollectionCompositions:
			if compositionAt < 0 {
				compositionAt = i
			}
		case model.CollectionSkilltrees:
			if skilltreeAt < 0 {
				skilltreeAt = i
			}
		}
	}
	if compositionAt < 0 || skilltreeAt < 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrMissingStructuralContext, path)
	}
	// 结构必须是 compositions/<c>/skilltrees/<t>/skills/<id>...
	if compositionAt != 0 || skilltreeAt != 2 {
		return Location{}, fmt.Errorf("%w: %q must start with compositions/<id>/skilltrees/<id>", ErrMalformedPath, path)
	}
	for i := 4; i < len(segments); i += 2 {
		if segments[i] != model.CollectionSkills {
			return Location{}, fmt.Errorf("%w: unexpected collection %q in %q", ErrMalformedPath, segments[i], path)
		}
	}
	loc.CompositionID = segments[1]
	loc.SkilltreeID = segments[3]

	below := segments[skilltreeAt+2:]
	if len(below) == 0 {
		// 技能树本身
		loc.ParentChain = []string{}
		return loc, nil
	}
	loc.SkillID = below[len(below)-1]
	loc.ParentChain = append([]string{}, below[:len(below)-2]...)
	loc.Depth = len(loc.ParentChain) / 2
	return loc, nil
}

// IsSkill 路径指向技能而不是技能树
func (l Location) IsSkill() bool {
	return l.SkillID != ""
}

// ParentIDs 返回祖先技能 ID，从根到直接父节点
func (l Location) ParentIDs() []string {
	ids := make([]string, 0, len(l.ParentChain)/2)
	for i := 1; i < len(l.ParentChain); i += 2 {
		ids = append(ids, l.ParentChain[i])
	}
	return ids
}

// ParentID 直接父技能的 ID，根技能返回空
func (l Location) ParentID() string {
	if len(l.ParentChain) == 0 {
		return ""
	}
	return l.ParentChain[len(l.ParentChain)-1]
}

func (l Location) SkilltreePath() string {
	return JoinPath(model.CollectionCompositions, l.CompositionID, model.CollectionSkilltrees, l.SkilltreeID)
}

// ParentPath 所属记录的路径：父技能，根技能则为技能树
func (l Location) ParentPath() string {
	if !l.IsSkill() {
		return JoinPath(model.CollectionCompositions, l.CompositionID)
	}
	parts := append([]string{l.SkilltreePath()}, l.ParentChain...)
	return JoinPath(parts...)
}

// ChildPath 返回当前记录下一个子技能的路径
func (l Location) ChildPath(childID string) string {
	return JoinPath(l.Path, model.CollectionSkills, childID)
}

func JoinPath(segments ...string) string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, PathSeparator)
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, PathSeparator)
}

// ChildCollection 返回路径对应记录的子集合名：组合 -> 技能树 -> 技能 -> 技能
func ChildCollection(path string) (string, error) {
	segments := strings.Split(strings.Trim(path, PathSeparator), PathSeparator)
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", fmt.Errorf("%w: %q", ErrMalformedPath, path)
	}
	switch segments[len(segments)-2] {
	case model.CollectionCompositions:
		return model.CollectionSkilltrees, nil
	case model.CollectionSkilltrees, model.CollectionSkills:
		return model.CollectionSkills, nil
	default:
		return "", fmt.Errorf("%w: unknown collection %q", ErrMalformedPath, segments[len(segments)-2])
	}
}

// Record 技能记录及其解析后的位置
type Record struct {
	Skill    model.Skill
	Location Location
}

// Annotate 对每个技能只解析一次路径，遇到第一个无效路径即整体失败
func Annotate(skills []model.Skill) ([]Record, error) {
	records := make([]Record, 0, len(skills))
	for _, s := range skills {
		loc, err := ParseLocation(s.Path)
		if err != nil {
			return nil, err
		}
		if !loc.IsSkill() {
			return nil, fmt.Errorf("%w: %q is not a skill path", ErrMalformedPath, s.Path)
		}
		records = append(records, Record{Skill: s, Location: loc})
	}
	return records, nil
}
