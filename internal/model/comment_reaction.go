package model

import (
	"time"
)

// CommentReaction 点赞与点踩互斥，同一用户对同一条评论只保留一种
type CommentReaction struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	CommentID uint64    `gorm:"primaryKey;index:idx_comment_id" json:"commentId"`
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"` // like / dislike
	CreatedAt time.Time `json:"createdAt"`
}

func (CommentReaction) TableName() string {
	return "comment_reactions"
}
