package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eryajf/qaloop/internal/model"
)

// RedisCache Redis 缓存层
// 缓存只是一层优化:读写失败一律按未命中处理,绝不向上传播错误
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(addr, password string, db int, ttl time.Duration, log *zap.SugaredLogger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}, nil
}

// Get 按问题查询缓存的记录,第二个返回值表示是否命中
// redis 不可用或载荷无法反序列化时视为未命中
func (r *RedisCache) Get(ctx context.Context, question string) (*model.Query, bool) {
	data, err := r.client.Get(ctx, Key(question)).Result()
	if err == redis.Nil {
		return nil, false // 缓存未命中
	}
	if err != nil {
		r.log.Warnf("Redis get failed, treating as miss: %v", err)
		return nil, false
	}

	var row model.Query
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		r.log.Warnf("Failed to decode cached row, treating as miss: %v", err)
		return nil, false
	}

	return &row, true
}

// Put 写入或刷新缓存记录,过期时间为配置的 TTL
// 写入失败只记录日志,不影响请求
func (r *RedisCache) Put(ctx context.Context, question string, row *model.Query) {
	data, err := json.Marshal(row)
	if err != nil {
		r.log.Warnf("Failed to encode row for cache: %v", err)
		return
	}

	if err := r.client.Set(ctx, Key(question), data, r.ttl).Err(); err != nil {
		r.log.Warnf("Redis set failed: %v", err)
	}
}

// Ping 检查 Redis 连通性,供健康检查使用
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (r *RedisCache) Close() error {
	return r.client.Close()
}
