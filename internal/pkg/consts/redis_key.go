package consts

const (
	UserSimpleInfoKey     = "user:simple:info:"
	UserFollowingKey      = "user:following:"
	UserFollowerKey       = "user:follower:"
	UserFollowerCountKey  = "user:follower:count:"
	UserFollowingCountKey = "user:following:count:"
	UserUnreadCountKey    = "user:unread:count:"
	UserBadgeChannelKey   = "user:badge:channel:"

	PostLikeKey        = "post:like:"
	PostCommentKey     = "post:comment:"
	PostDirtyKey       = "post:dirty"
	CommentReactionKey = "comment:reaction:"
	CommentDirtyKey    = "comment:reaction:dirty"
)

const (
	FollowToggleLock      = "follow:toggle:lock:"
	NotificationDedupeKey = "notification:dedupe:"
	TokenRevokedKey       = "token:revoked:"
)
