package dto

// FollowToggleReq 关注切换请求
type FollowToggleReq struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// FollowResultDTO 关注切换后的最终状态
type FollowResultDTO struct {
	UserID         uint64 `json:"user_id"`
	IsFollowing    bool   `json:"is_following"`
	FollowersCount int64  `json:"followers_count"`
}

// FollowListDTO 关注/粉丝列表
type FollowListDTO struct {
	Users []*UserDTO `json:"users"`
	Total int64      `json:"total"`
}
