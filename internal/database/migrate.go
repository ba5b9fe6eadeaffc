package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/eryajf/qaloop/internal/model"
)

// AutoMigrate 自动迁移数据库表结构
// querys 表不声明 (title, body) 的唯一约束,行的归并语义由 store 层的
// 条件更新实现,这里只保证表结构存在
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Query{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
