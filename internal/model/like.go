package model

import (
	"time"
)

// Like 点赞记录，(user_id, post_id) 联合主键天然防重
type Like struct {
	UserID    uint64    `gorm:"primaryKey" json:"user_id"`
	PostID    uint64    `gorm:"primaryKey;index:idx_post_id" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}
