package model

import (
	"time"
)

type User struct {
	ID             uint64  `gorm:"primaryKey"`
	Username       string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_username" json:"username"`
	Email          string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_email" json:"email"`
	Password       string  `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName    *string `gorm:"type:varchar(100)" json:"display_name"`
	AvatarURL      *string `gorm:"type:varchar(512)" json:"avatar_url"`
	Bio            *string `gorm:"type:varchar(500)" json:"bio"`
	Pronouns       *string `gorm:"type:varchar(50)" json:"pronouns"`
	PostsCount     int     `gorm:"not null;default:0" json:"posts_count"`
	FollowersCount int     `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int     `gorm:"not null;default:0" json:"following_count"`
	IsBan          bool    `gorm:"type:tinyint(1);default:0" json:"-"`
	IsDelete       bool    `gorm:"type:tinyint(1);default:0" json:"-"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string {
	return "users"
}
