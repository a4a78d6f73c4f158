package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationModel 通知模型
type NotificationModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID uint64             `bson:"recipient_id" json:"recipientId"` // 消息接收者ID
	ActorID     uint64             `bson:"actor_id" json:"actorId"`         // 动作发起者ID
	Type        string             `bson:"type" json:"type"`                // like / comment / comment_like / follow
	EntityID    uint64             `bson:"entity_id" json:"entityId"`       // 关联的帖子或评论ID (follow 为 0)
	Message     string             `bson:"message" json:"message"`          // 通知文案
	IsRead      bool               `bson:"is_read" json:"isRead"`           // 是否已读
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`     // 创建时间
}
