package dto

// CommentCreateDTO 创建评论请求
type CommentCreateDTO struct {
	PostID   uint64 `json:"post_id" binding:"required"`
	Content  string `json:"content" binding:"required,max=1000"`
	ParentID uint64 `json:"parent_id"` // 0 表示一级评论
}

// CommentDTO 评论返回详情
type CommentDTO struct {
	ID            uint64  `json:"id"`
	PostID        uint64  `json:"post_id"`
	UserID        uint64  `json:"user_id"`
	Username      string  `json:"username"`
	DisplayName   string  `json:"display_name"`
	AvatarURL     string  `json:"avatar_url"`
	Content       string  `json:"content"`
	ParentID      uint64  `json:"parent_id"`
	LikesCount    int     `json:"likes_count"`
	DislikesCount int     `json:"dislikes_count"`
	MyReaction    *string `json:"my_reaction,omitempty"` // like / dislike
	CreatedAt     string  `json:"created_at"`
}

// 评论树展平后的条目类型
const (
	ThreadEntryComment  = "comment"
	ThreadEntryViewMore = "view_more"
	ThreadEntryViewLess = "view_less"
)

// ThreadEntryDTO 评论区的一行：评论本体或折叠控制项
type ThreadEntryDTO struct {
	Kind        string      `json:"kind"`
	Comment     *CommentDTO `json:"comment,omitempty"`
	ParentID    uint64      `json:"parent_id,omitempty"`
	HiddenCount int         `json:"hidden_count,omitempty"` // view_more 时剩余未展开的回复数
}

// ThreadDTO 单帖评论区
type ThreadDTO struct {
	PostID  uint64            `json:"post_id"`
	Total   int               `json:"total"`
	Entries []*ThreadEntryDTO `json:"entries"`
}

// CommentReactionReq 评论点赞/点踩请求
type CommentReactionReq struct {
	CommentID uint64 `json:"comment_id" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=like dislike"`
	Action    int    `json:"action" binding:"required,oneof=1 2"` // 1:执行, 2:取消
}

// CommentReactionDTO 评论互动后的最终状态
type CommentReactionDTO struct {
	CommentID     uint64  `json:"comment_id"`
	LikesCount    int     `json:"likes_count"`
	DislikesCount int     `json:"dislikes_count"`
	MyReaction    *string `json:"my_reaction,omitempty"`
}

// LikeToggleReq 帖子点赞切换请求
type LikeToggleReq struct {
	PostID  uint64 `json:"post_id" binding:"required"`
	Version int64  `json:"version"` // 客户端最近一次看到的帖子版本
}
