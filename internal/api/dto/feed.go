package dto

// MediaItemDTO 帖子媒体条目
type MediaItemDTO struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// FeedItemDTO 信息流中的一条帖子
type FeedItemDTO struct {
	ID            uint64         `json:"id"`
	UserID        uint64         `json:"user_id"`
	Username      string         `json:"username"`
	DisplayName   string         `json:"display_name"`
	AvatarURL     string         `json:"avatar_url"`
	Caption       string         `json:"caption"`
	Media         []MediaItemDTO `json:"media"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	IsLiked       bool           `json:"is_liked"`
	IsFollowing   bool           `json:"is_following"`
	FirstLiker    string         `json:"first_liker"` // 空串表示还没人点赞
	Version       int64          `json:"version"`
	CreatedAt     string         `json:"created_at"`
}

// FeedDTO 一次完整的信息流快照
type FeedDTO struct {
	SessionID string         `json:"session_id"`
	Items     []*FeedItemDTO `json:"items"`
	Stale     bool           `json:"stale"` // 加载失败时回退旧快照
}

// LikeResultDTO 点赞切换后的最终状态
type LikeResultDTO struct {
	PostID     uint64 `json:"post_id"`
	IsLiked    bool   `json:"is_liked"`
	LikesCount int    `json:"likes_count"`
	FirstLiker string `json:"first_liker"`
	Version    int64  `json:"version"`
}
