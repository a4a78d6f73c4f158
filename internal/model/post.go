package model

import (
	"time"
)

type Post struct {
	ID            uint64    `gorm:"primaryKey"`
	UserID        uint64    `gorm:"not null;index:idx_user_id" json:"user_id"`
	Caption       string    `gorm:"type:varchar(2000)" json:"caption"`
	// 旧版单媒体字段，新数据写 post_media 表
	ImageURL      *string   `gorm:"type:varchar(512)" json:"image_url"`
	VideoURL      *string   `gorm:"type:varchar(512)" json:"video_url"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	IsDeleted     bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 关联关系
	User  User        `gorm:"foreignKey:UserID;references:ID"`
	Media []PostMedia `gorm:"foreignKey:PostID;references:ID"`
}

func (Post) TableName() string {
	return "posts"
}

// MediaItem 统一后的媒体条目，新旧两种存储都归一到它
type MediaItem struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
