package skilltree

import (
	"fmt"

	"skilltree_backend/internal/model"
)

// Ancestor 记录展开路径中的一层：父节点 ID 以及当前节点在父节点子列表中的位置
type Ancestor struct {
	ParentID   string `json:"parentId"`
	ChildIndex int    `json:"childIndex"`
}

// FlatSkill 是树展开后的单个节点
type FlatSkill struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Optional      bool        `json:"optional"`
	Content       interface{} `json:"content,omitempty"`
	Ancestry      []Ancestor  `json:"ancestry"`
	CountChildren int         `json:"countChildren"`
	Skill         model.Skill `json:"skill"`
}

// Flatten 深度优先先序展开子树。每个节点带上当前累积的祖先链，
// Order 为最后一层的子节点下标，祖先链为空时沿用节点自身的 order
func Flatten(node *TreeNode, ancestry []Ancestor) []FlatSkill {
	if node == nil {
		return nil
	}
	var out []FlatSkill
	flattenInto(node, ancestry, &out)
	return out
}

func flattenInto(node *TreeNode, ancestry []Ancestor, out *[]FlatSkill) {
	skill := node.Record.Skill
	if len(ancestry) > 0 {
		skill.Order = ancestry[len(ancestry)-1].ChildIndex
	}
	flat := FlatSkill{
		ID:            skill.ID,
		Title:         skill.Title,
		Optional:      skill.Optional,
		Ancestry:      append([]Ancestor(nil), ancestry...),
		CountChildren: len(node.Children),
		Skill:         skill,
	}
	if node.Decoration != nil {
		flat.Content = node.Decoration.Content
	}
	*out = append(*out, flat)

	for i, child := range node.Children {
		next := make([]Ancestor, len(ancestry), len(ancestry)+1)
		copy(next, ancestry)
		next = append(next, Ancestor{ParentID: skill.ID, ChildIndex: i})
		flattenInto(child, next, out)
	}
}

// FlattenForest 依次展开每个根节点，根节点的 order 为其在森林中的位置
func FlattenForest(forest []*TreeNode) []FlatSkill {
	var out []FlatSkill
	for i, root := range forest {
		items := Flatten(root, nil)
		if len(items) > 0 {
			items[0].Skill.Order = i
		}
		out = append(out, items...)
	}
	return out
}

// Materialize 为挂在 skilltreePath 下的展开技能重建存储路径，
// 没有 ID 的技能生成新 ID，祖先引用同步改写
func Materialize(flat []FlatSkill, skilltreePath string) ([]model.Skill, error) {
	tree, err := ParseLocation(skilltreePath)
	if err != nil {
		return nil, err
	}
	if tree.IsSkill() {
		return nil, fmt.Errorf("%w: %q is not a skilltree path", ErrMalformedPath, skilltreePath)
	}

	pathByID := make(map[string]string, len(flat))
	out := make([]model.Skill, 0, len(flat))
	for _, f := range flat {
		if f.Title == "" && f.Skill.Title == "" {
			return nil, fmt.Errorf("%w: skill title is required", ErrIncompleteInput)
		}
		s := f.Skill
		if s.ID == "" {
			s.ID = f.ID
		}
		if s.ID == "" {
			s.ID = model.GenerateUUID()
		}
		if s.Title == "" {
			s.Title = f.Title
		}

		parentPath := tree.Path
		if len(f.Ancestry) > 0 {
			parent := f.Ancestry[len(f.Ancestry)-1].ParentID
			p, ok := pathByID[parent]
			if !ok {
				return nil, fmt.Errorf("%w: parent %q must precede its children", ErrIncompleteInput, parent)
			}
			parentPath = p
			s.Order = f.Ancestry[len(f.Ancestry)-1].ChildIndex
		}

		s.Path = JoinPath(parentPath, model.CollectionSkills, s.ID)
		s.ParentPath = parentPath
		s.CompositionID = tree.CompositionID
		s.SkilltreeID = tree.SkilltreeID
		s.Depth = len(f.Ancestry)
		if s.Weight == 0 {
			s.Weight = model.DefaultSkillWeight
		}
		if s.GradeSkill == "" {
			s.GradeSkill = model.GradeSkillDefault
		}
		if f.ID != "" {
			pathByID[f.ID] = s.Path
		}
		pathByID[s.ID] = s.Path
		out = append(out, s)
	}
	return out, nil
}
