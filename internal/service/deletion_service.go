package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"skilltree_backend/internal/skilltree"
	"skilltree_backend/pkg/logger"
	"skilltree_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// DeletionService 级联删除：先递归删除全部子记录，再删除记录本身
type DeletionService struct {
	Store PathStore
}

func NewDeletionService(store PathStore) *DeletionService {
	return &DeletionService{Store: store}
}

// DeleteRecursively removes the record at path and everything below it,
// children before parents. It stops at the first store failure, so the subtree
// may be left partially deleted. A missing path counts as success.
func (s *DeletionService) DeleteRecursively(ctx context.Context, path string) error {
	collection, err := skilltree.ChildCollection(path)
	if err != nil {
		return err
	}
	children, err := s.Store.ListChildPaths(ctx, path)
	if err != nil {
		return s.fail(path, err)
	}
	for _, child := range children {
		if err := s.DeleteRecursively(ctx, child); err != nil {
			return err
		}
	}
	if err := s.Store.DeleteByPath(ctx, path); err != nil {
		if errors.Is(err, skilltree.ErrNotFound) {
			return nil
		}
		return s.fail(path, err)
	}
	monitoring.DeletedRecords.WithLabelValues(recordCollection(path)).Inc()
	logger.Log.Debug("record deleted", zap.String("path", path), zap.String("childCollection", collection))
	return nil
}

func (s *DeletionService) fail(path string, err error) error {
	logger.Log.Error("recursive delete aborted", zap.String("path", path), zap.Error(err))
	if errors.Is(err, skilltree.ErrStoreOperationFailed) {
		return err
	}
	return fmt.Errorf("%w: delete %s: %v", skilltree.ErrStoreOperationFailed, path, err)
}

// recordCollection 返回路径最后一条记录所在的集合名，路径已经过 ChildCollection 校验
func recordCollection(path string) string {
	segments := strings.Split(strings.Trim(path, skilltree.PathSeparator), skilltree.PathSeparator)
	return segments[len(segments)-2]
}
