package skilltree

import (
	"sort"
	"strings"
)

type ViewMode string

const (
	ModeEditing ViewMode = "editing"
	ModeViewing ViewMode = "viewing"
)

const DefaultDirection = "top"

// RenderDecoration 仅在渲染边界附加到节点上的展示信息
type RenderDecoration struct {
	Content   interface{} `json:"content,omitempty"`
	Direction string      `json:"direction"`
}

// EditActions 由调用方提供的编辑回调，树构建过程只负责透传，不会调用它们
type EditActions struct {
	Edit       func(node *TreeNode) `json:"-"`
	AddChild   func(node *TreeNode) `json:"-"`
	AddSibling func(node *TreeNode) `json:"-"`
	Delete     func(node *TreeNode) `json:"-"`
}

// TreeNode 记录及其子节点，Decoration 只在查看模式下设置
type TreeNode struct {
	Record     Record            `json:"-"`
	Children   []*TreeNode       `json:"children"`
	Expanded   bool              `json:"expanded,omitempty"`
	Actions    *EditActions      `json:"-"`
	Decoration *RenderDecoration `json:"decoration,omitempty"`
}

func (n *TreeNode) ID() string {
	return n.Record.Skill.ID
}

// Walk 先序遍历子树，fn 返回 false 时不再进入当前节点的子节点
func (n *TreeNode) Walk(fn func(node *TreeNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Size 返回子树中的节点数（包含自身）
func (n *TreeNode) Size() int {
	count := 0
	n.Walk(func(*TreeNode) bool {
		count++
		return true
	})
	return count
}

// Decorator 为一个节点生成渲染内容，parentDirection 为父节点的方向（根节点为空）
type Decorator func(rec Record, parentDirection string) *RenderDecoration

type BuildOptions struct {
	Mode     ViewMode
	Actions  *EditActions
	Decorate Decorator
	// RootPath 根节点的父路径。整棵树时为技能树路径，子树输入时为子树根的父路径；
	// 为空时只有深度为 0 的技能是根
	RootPath string
}

type BuildResult struct {
	Forest  []*TreeNode
	Orphans []Record
}

// Build 把扁平记录组装成森林。子节点的链比父节点长一对且在对应位置指向父节点，
// 等价于它的父路径就是父节点的路径。只有父路径等于 RootPath 的记录是根，
// 其余父节点不在输入中的记录作为孤儿返回，不出现在森林里
func Build(records []Record, opts BuildOptions) BuildResult {
	result := BuildResult{Forest: []*TreeNode{}}
	if len(records) == 0 {
		return result
	}

	byPath := make(map[string]*TreeNode, len(records))
	ordered := make([]*TreeNode, 0, len(records))
	for _, rec := range records {
		if _, dup := byPath[rec.Location.Path]; dup {
			continue
		}
		node := &TreeNode{Record: rec, Children: []*TreeNode{}}
		byPath[rec.Location.Path] = node
		ordered = append(ordered, node)
	}

	var roots []*TreeNode
	for _, node := range ordered {
		if isRoot(node.Record.Location, opts.RootPath) {
			roots = append(roots, node)
			continue
		}
		parent, ok := byPath[node.Record.Location.ParentPath()]
		if !ok {
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	reached := make(map[*TreeNode]bool, len(ordered))
	for _, root := range roots {
		attach(root, "", opts, reached)
		result.Forest = append(result.Forest, root)
	}
	// 未能从根节点到达的记录（父节点缺失，或祖先缺失）视为孤儿
	for _, node := range ordered {
		if !reached[node] {
			result.Orphans = append(result.Orphans, node.Record)
		}
	}
	return result
}

func isRoot(loc Location, rootPath string) bool {
	if rootPath == "" {
		return loc.Depth == 0
	}
	return loc.ParentPath() == strings.Trim(rootPath, PathSeparator)
}

func attach(node *TreeNode, parentDirection string, opts BuildOptions, reached map[*TreeNode]bool) {
	reached[node] = true
	sortNodes(node.Children)

	direction := parentDirection
	switch opts.Mode {
	case ModeEditing:
		node.Expanded = true
		node.Actions = opts.Actions
	case ModeViewing:
		var deco *RenderDecoration
		if opts.Decorate != nil {
			deco = opts.Decorate(node.Record, parentDirection)
		}
		if deco == nil {
			deco = &RenderDecoration{}
		}
		if deco.Direction == "" {
			deco.Direction = parentDirection
		}
		if deco.Direction == "" {
			deco.Direction = DefaultDirection
		}
		node.Decoration = deco
		direction = deco.Direction
	}

	for _, child := range node.Children {
		attach(child, direction, opts, reached)
	}
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Record.Skill, nodes[j].Record.Skill
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.ID < b.ID
	})
}
