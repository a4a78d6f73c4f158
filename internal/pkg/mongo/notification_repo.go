package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepo interface {
	Create(ctx context.Context, msg *NotificationModel) error
	GetList(ctx context.Context, recipientID uint64, limit, offset int64) ([]*NotificationModel, error)
	MarkAllAsRead(ctx context.Context, recipientID uint64) error
	GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error)
	DeleteByActorAndType(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64) error
	DeleteByEntity(ctx context.Context, entityIDs []uint64) error
}

type notificationRepoImpl struct {
	col *mongo.Collection
}

func NewNotificationRepo(db *mongo.Database) NotificationRepo {
	return &notificationRepoImpl{
		col: db.Collection("notifications"),
	}
}

// Create 插入新通知
func (s *notificationRepoImpl) Create(ctx context.Context, msg *NotificationModel) error {
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetList 分页获取用户的通知列表 (按时间倒序)
func (s *notificationRepoImpl) GetList(ctx context.Context, recipientID uint64, limit, offset int64) ([]*NotificationModel, error) {
	filter := bson.M{"recipient_id": recipientID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*NotificationModel
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkAllAsRead 一键清除未读
func (s *notificationRepoImpl) MarkAllAsRead(ctx context.Context, recipientID uint64) error {
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true}}
	_, err := s.col.UpdateMany(ctx, filter, update)
	return err
}

// GetUnreadCount 获取用户的未读通知总数
func (s *notificationRepoImpl) GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	return s.col.CountDocuments(ctx, filter)
}

// DeleteByActorAndType 删除某个发起者对某个接收者的某类通知 (取关/取消点赞时的回收)
func (s *notificationRepoImpl) DeleteByActorAndType(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64) error {
	filter := bson.M{"recipient_id": recipientID, "actor_id": actorID, "type": notifType}
	if entityID > 0 {
		filter["entity_id"] = entityID
	}
	_, err := s.col.DeleteMany(ctx, filter)
	return err
}

// DeleteByEntity 删除指向一批实体的所有通知 (帖子级联删除)
func (s *notificationRepoImpl) DeleteByEntity(ctx context.Context, entityIDs []uint64) error {
	if len(entityIDs) == 0 {
		return nil
	}
	filter := bson.M{"entity_id": bson.M{"$in": entityIDs}}
	_, err := s.col.DeleteMany(ctx, filter)
	return err
}
