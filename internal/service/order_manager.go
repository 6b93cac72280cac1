package service

import (
	"context"
	"errors"
	"fmt"

	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"
	"skilltree_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// OrderManager 维护兄弟节点之间连续的 order（0..n-1）
type OrderManager struct {
	Store OrderStore
}

func NewOrderManager(store OrderStore) *OrderManager {
	return &OrderManager{Store: store}
}

// AssignOrderOnCreate returns the current sibling count under parentPath so a new
// record becomes the last sibling. Two concurrent creates can still observe the
// same count; Repair resolves the resulting duplicate.
func (m *OrderManager) AssignOrderOnCreate(ctx context.Context, parentPath string) (int, error) {
	return m.Store.CountSiblings(ctx, parentPath)
}

func (m *OrderManager) MoveUp(ctx context.Context, parentPath string, siblings []skilltree.Sibling, index int) error {
	return m.move(ctx, parentPath, siblings, index, skilltree.MoveUp)
}

func (m *OrderManager) MoveDown(ctx context.Context, parentPath string, siblings []skilltree.Sibling, index int) error {
	return m.move(ctx, parentPath, siblings, index, skilltree.MoveDown)
}

func (m *OrderManager) move(ctx context.Context, parentPath string, siblings []skilltree.Sibling, index int, dir skilltree.Direction) error {
	target, ok := skilltree.SwapTarget(len(siblings), index, dir)
	if !ok {
		return nil
	}
	err := m.Store.SwapOrder(ctx, parentPath, siblings[index], siblings[target])
	if errors.Is(err, skilltree.ErrOrderConflict) {
		monitoring.OrderConflicts.Inc()
		logger.Log.Warn("sibling swap lost a race",
			zap.String("parentPath", parentPath),
			zap.String("id", siblings[index].ID),
			zap.Error(err))
	}
	return err
}

// Move 按记录 ID 移动：读取当前兄弟列表，不连续时先修复，再交换
func (m *OrderManager) Move(ctx context.Context, parentPath, id string, dir skilltree.Direction) error {
	siblings, err := m.Store.ListSiblings(ctx, parentPath)
	if err != nil {
		return err
	}
	if !dense(siblings) {
		if _, err := m.Repair(ctx, parentPath, "move"); err != nil {
			return err
		}
		if siblings, err = m.Store.ListSiblings(ctx, parentPath); err != nil {
			return err
		}
	}
	for i, s := range siblings {
		if s.ID == id {
			return m.move(ctx, parentPath, siblings, i, dir)
		}
	}
	return fmt.Errorf("%w: %s under %s", skilltree.ErrNotFound, id, parentPath)
}

// Repair re-densifies the sibling group under parentPath and returns the number of
// records whose order changed. Running it on a dense group writes nothing.
func (m *OrderManager) Repair(ctx context.Context, parentPath, trigger string) (int, error) {
	siblings, err := m.Store.ListSiblings(ctx, parentPath)
	if err != nil {
		return 0, err
	}
	changes := skilltree.Densify(siblings)
	if len(changes) == 0 {
		return 0, nil
	}
	if err := m.Store.ApplyOrderChanges(ctx, parentPath, changes); err != nil {
		return 0, err
	}
	monitoring.OrderRepairs.WithLabelValues(trigger).Add(float64(len(changes)))
	logger.Log.Info("sibling order repaired",
		zap.String("parentPath", parentPath),
		zap.String("trigger", trigger),
		zap.Int("changed", len(changes)))
	return len(changes), nil
}

func dense(siblings []skilltree.Sibling) bool {
	orders := make([]int, len(siblings))
	for i, s := range siblings {
		orders[i] = s.Order
	}
	return skilltree.IsDense(orders)
}
