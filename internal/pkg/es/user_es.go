package es

// UserES 对应 user_index 的文档结构
type UserES struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	DisplayName    string  `json:"display_name"`
	Bio            *string `json:"bio,omitempty"`
	Pronouns       *string `json:"pronouns,omitempty"`
	AvatarURL      string  `json:"avatar_url"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
}
