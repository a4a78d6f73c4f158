package consts

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

const (
	MimePrefixImage = "image"
	MimePrefixVideo = "video"
)

// 通知类型
const (
	NotificationTypeLike        = "like"
	NotificationTypeComment     = "comment"
	NotificationTypeCommentLike = "comment_like"
	NotificationTypeFollow      = "follow"
)

// 评论反应类型
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

const (
	DefaultAvatarURL = "default_avatar.png"
)
