package dto

// NotificationDTO 通知返回对象
type NotificationDTO struct {
	ID            string `json:"id"`
	ActorID       uint64 `json:"actor_id"`
	ActorUsername string `json:"actor_username"`
	AvatarURL     string `json:"avatar_url"`
	Type          string `json:"type"` // like / comment / comment_like / follow
	EntityID      uint64 `json:"entity_id"`
	Message       string `json:"message"`
	IsRead        bool   `json:"is_read"`
	CreatedAt     string `json:"created_at"`
}

// NotificationListDTO 通知列表，读取即视为全部已读
type NotificationListDTO struct {
	Notifications []*NotificationDTO `json:"notifications"`
	UnreadCount   int64              `json:"unread_count"` // 本次拉取前的未读数
}

// UnreadCountDTO 未读数返回
type UnreadCountDTO struct {
	UnreadCount int64 `json:"unread_count"`
}
