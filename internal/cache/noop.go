package cache

import (
	"context"

	"github.com/eryajf/qaloop/internal/model"
)

// NoopCache 空实现,禁用缓存或 Redis 不可用时使用,所有读取都未命中
type NoopCache struct{}

// Get 总是未命中
func (NoopCache) Get(ctx context.Context, question string) (*model.Query, bool) {
	return nil, false
}

// Put 丢弃写入
func (NoopCache) Put(ctx context.Context, question string, row *model.Query) {}
