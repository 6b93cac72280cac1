package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skilltree_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// CompletionCache 在 Redis 中缓存用户在某个组合上的完成状态，并通过频道广播变更
type CompletionCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewCompletionCache(rdb *redis.Client, ttl time.Duration) *CompletionCache {
	return &CompletionCache{RDB: rdb, TTL: ttl}
}

func completionKey(userID uint, compositionID string) string {
	return fmt.Sprintf("skilltree:completion:%d:%s", userID, compositionID)
}

func CompletionChannel(compositionID string) string {
	return "skilltree:completion:changed:" + compositionID
}

// Get 返回缓存内容，未命中时 ok 为 false
func (c *CompletionCache) Get(ctx context.Context, userID uint, compositionID string) ([]model.SkillCompletion, bool, error) {
	raw, err := c.RDB.Get(ctx, completionKey(userID, compositionID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cs []model.SkillCompletion
	if err := json.Unmarshal(raw, &cs); err != nil {
		return nil, false, err
	}
	return cs, true, nil
}

func (c *CompletionCache) Set(ctx context.Context, userID uint, compositionID string, cs []model.SkillCompletion) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, completionKey(userID, compositionID), raw, c.TTL).Err()
}

func (c *CompletionCache) Invalidate(ctx context.Context, userID uint, compositionID string) error {
	return c.RDB.Del(ctx, completionKey(userID, compositionID)).Err()
}

func (c *CompletionCache) Publish(ctx context.Context, change model.SkillCompletion) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return c.RDB.Publish(ctx, CompletionChannel(change.CompositionID), raw).Err()
}

// Subscribe 订阅组合的完成状态变更，返回的取消函数必须且只能调用一次
func (c *CompletionCache) Subscribe(ctx context.Context, compositionID string, handler func(model.SkillCompletion)) (func(), error) {
	sub := c.RDB.Subscribe(ctx, CompletionChannel(compositionID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range sub.Channel() {
			var change model.SkillCompletion
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue
			}
			handler(change)
		}
	}()

	return func() {
		sub.Close()
		<-done
	}, nil
}
