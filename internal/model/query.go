package model

import "time"

// Query 问答记录模型,一条记录对应一个 (title, body) 语境下的答案
type Query struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Score     int       `json:"score" gorm:"not null"`                 // 答案评分,始终在 1-10 之间
	Title     string    `json:"title" gorm:"type:text;not null;index"` // 原始问题文本
	Body      *string   `json:"body" gorm:"type:text"`                 // 可选的附加语境,允许为 NULL
	Answer    string    `json:"answer" gorm:"type:text;not null"`
}

// TableName 指定表名
func (Query) TableName() string {
	return "querys"
}
