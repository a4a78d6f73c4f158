package model

import (
	"time"
)

type Comment struct {
	ID            uint64    `gorm:"primaryKey"`
	PostID        uint64    `gorm:"not null;index:idx_post_id" json:"postId"`
	UserID        uint64    `gorm:"not null" json:"userId"`
	Content       string    `gorm:"type:varchar(1000);not null" json:"content"`
	ParentID      uint64    `gorm:"not null;default:0;index:idx_parent_id" json:"parentId"` // 0表示这是一级评论
	LikesCount    int       `gorm:"not null;default:0" json:"likesCount"`
	DislikesCount int       `gorm:"not null;default:0" json:"dislikesCount"`
	IsDeleted     bool      `gorm:"type:tinyint(1);not null;default:0" json:"isDeleted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}
