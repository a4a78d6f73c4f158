package dto

import "time"

// RegisterDTO 注册
type RegisterDTO struct {
	Username    string  `json:"username" binding:"required" validate:"min=3,max=20"`
	Email       string  `json:"email" binding:"required" validate:"email"`
	Password    string  `json:"password" binding:"required" validate:"min=6,max=72"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
}

// CredentialDTO 登录凭证
type CredentialDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResultDTO 登录结果，session_id 与 token 一一对应
type LoginResultDTO struct {
	Token     string   `json:"token"`
	SessionID string   `json:"session_id"`
	User      *UserDTO `json:"user"`
}

// UserDTO 用户资料
type UserDTO struct {
	UserID         uint64     `json:"user_id"`
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	AvatarURL      string     `json:"avatar_url"`
	Bio            *string    `json:"bio,omitempty"`
	Pronouns       *string    `json:"pronouns,omitempty"`
	PostsCount     int        `json:"posts_count"`
	FollowersCount int        `json:"followers_count"`
	FollowingCount int        `json:"following_count"`
	IsFollowing    bool       `json:"is_following"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

// UpdateProfileDTO 编辑资料，全部可选，nil 表示不改
type UpdateProfileDTO struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Pronouns    *string `json:"pronouns,omitempty" validate:"omitempty,max=50"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,max=512"`
}
