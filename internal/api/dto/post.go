package dto

// CreatePostDTO 发帖请求
type CreatePostDTO struct {
	Caption string          `json:"caption" binding:"required" validate:"max=2000"`
	Media   []*MediaItemDTO `json:"media" validate:"max=9,dive"`
}

// UpdatePostDTO 编辑帖子，只允许改文案
type UpdatePostDTO struct {
	Caption string `json:"caption" binding:"required" validate:"max=2000"`
}

// PostDTO 帖子详情
type PostDTO struct {
	ID            uint64         `json:"id"`
	UserID        uint64         `json:"user_id"`
	Username      string         `json:"username"`
	DisplayName   string         `json:"display_name"`
	AvatarURL     string         `json:"avatar_url"`
	Caption       string         `json:"caption"`
	Media         []MediaItemDTO `json:"media"`
	LikesCount    int            `json:"likes_count"`
	CommentsCount int            `json:"comments_count"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// UploadResultDTO 媒体上传结果
type UploadResultDTO struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
