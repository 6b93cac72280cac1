package skilltree

import (
	"sort"
)

type Direction int

const (
	MoveUp   Direction = -1
	MoveDown Direction = 1
)

// SwapTarget 返回按 dir 移动时要交换的下标。
// 第一个上移、最后一个下移或下标越界时 ok 为 false
func SwapTarget(count, index int, dir Direction) (target int, ok bool) {
	if index < 0 || index >= count {
		return 0, false
	}
	target = index + int(dir)
	if target < 0 || target >= count {
		return 0, false
	}
	return target, true
}

// OrderChange 需要写回存储的一次 order 变更
type OrderChange struct {
	ID       string
	Path     string
	OldOrder int
	NewOrder int
}

// Sibling 参与兄弟排序的记录的最小视图
type Sibling struct {
	ID        string
	Path      string
	Order     int
	CreatedAt int64
}

// Densify 按 (order, createdAt, id) 排序并重新分配 0..n-1，
// 只返回 order 实际变化的记录，已连续的分组返回空
func Densify(siblings []Sibling) []OrderChange {
	sorted := append([]Sibling(nil), siblings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return a.ID < b.ID
	})

	var changes []OrderChange
	for i, s := range sorted {
		if s.Order != i {
			changes = append(changes, OrderChange{ID: s.ID, Path: s.Path, OldOrder: s.Order, NewOrder: i})
		}
	}
	return changes
}

// IsDense order 是否恰好为 0..n-1
func IsDense(orders []int) bool {
	seen := make([]bool, len(orders))
	for _, o := range orders {
		if o < 0 || o >= len(orders) || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
