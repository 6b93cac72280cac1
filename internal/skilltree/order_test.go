package skilltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSwapTarget_Boundaries(t *testing.T) {
	_, ok := SwapTarget(3, 0, MoveUp)
	assert.False(t, ok, "moving the first sibling up is a no-op")

	_, ok = SwapTarget(3, 2, MoveDown)
	assert.False(t, ok, "moving the last sibling down is a no-op")

	_, ok = SwapTarget(3, 5, MoveDown)
	assert.False(t, ok)

	target, ok := SwapTarget(3, 1, MoveUp)
	assert.True(t, ok)
	assert.Equal(t, 0, target)

	target, ok = SwapTarget(3, 1, MoveDown)
	assert.True(t, ok)
	assert.Equal(t, 2, target)
}

func TestDensify_RepairsGapsAndDuplicates(t *testing.T) {
	siblings := []Sibling{
		{ID: "c", Order: 7, CreatedAt: 3},
		{ID: "a", Order: 2, CreatedAt: 1},
		{ID: "b", Order: 2, CreatedAt: 2},
	}
	changes := Densify(siblings)

	got := map[string]int{}
	for _, s := range siblings {
		got[s.ID] = s.Order
	}
	for _, c := range changes {
		got[c.ID] = c.NewOrder
	}
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2}, got)

	orders := []int{got["a"], got["b"], got["c"]}
	assert.True(t, IsDense(orders))
}

func TestDensify_IdempotentOnDenseGroup(t *testing.T) {
	siblings := []Sibling{{ID: "a", Order: 0}, {ID: "b", Order: 1}}
	assert.Empty(t, Densify(siblings))
}

func TestIsDense(t *testing.T) {
	assert.True(t, IsDense(nil))
	assert.True(t, IsDense([]int{1, 0, 2}))
	assert.False(t, IsDense([]int{0, 0}))
	assert.False(t, IsDense([]int{0, 2}))
}
