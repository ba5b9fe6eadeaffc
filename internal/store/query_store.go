package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/eryajf/qaloop/internal/model"
)

// QueryStore 问答记录持久层
type QueryStore struct {
	db *gorm.DB
}

// NewQueryStore 创建问答记录持久层实例
func NewQueryStore(db *gorm.DB) *QueryStore {
	return &QueryStore{db: db}
}

// FindByTitle 按问题文本查询记录,title 忽略大小写精确匹配
// 未命中返回 (nil, nil);存在重复行时只返回第一行
func (s *QueryStore) FindByTitle(ctx context.Context, question string) (*model.Query, error) {
	var row model.Query
	err := s.db.WithContext(ctx).
		Where("LOWER(title) = LOWER(?)", question).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query row by title: %w", err)
	}

	return &row, nil
}

// Upsert 归并写入一条记录
// 先尝试更新 title 忽略大小写匹配且 body NULL 安全相等的行(NULL=NULL 视为相等),
// 刷新其 score/answer/body;没有命中任何行时插入新行。
// (title, body) 没有唯一约束,并发下首次写入同一对可能产生重复行,这是已接受的竞态
func (s *QueryStore) Upsert(ctx context.Context, row *model.Query) error {
	tx := s.db.WithContext(ctx).
		Model(&model.Query{}).
		Where("LOWER(title) = LOWER(?)", row.Title)

	if row.Body == nil {
		tx = tx.Where("body IS NULL")
	} else {
		tx = tx.Where("body = ?", *row.Body)
	}

	tx = tx.Updates(map[string]any{
		"score":  row.Score,
		"answer": row.Answer,
		"body":   row.Body,
	})
	if tx.Error != nil {
		return fmt.Errorf("failed to update row: %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		// 没有可归并的行 -> 插入
		if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	return nil
}

// Ping 检查数据库连通性,供健康检查使用
func (s *QueryStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
