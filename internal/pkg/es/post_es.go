package es

import "time"

// PostES 写入 ES 的帖子文档
type PostES struct {
	ID            uint64        `json:"id"`
	UserID        uint64        `json:"user_id"`
	Caption       string        `json:"caption"`
	Media         []PostMediaES `json:"media"`
	Username      string        `json:"username"`
	DisplayName   string        `json:"display_name"`
	AvatarURL     string        `json:"avatar_url"`
	LikesCount    int           `json:"likes_count"`
	CommentsCount int           `json:"comments_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// PostMediaES 对应 Mapping 中的 media 对象
type PostMediaES struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
