package service

import (
	"Glimpse/internal/pkg/mongo"
	"Glimpse/internal/pkg/push"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifRepo struct {
	getList       func(ctx context.Context, recipientID uint64, limit, offset int64) ([]*mongo.NotificationModel, error)
	markAllAsRead func(ctx context.Context, recipientID uint64) error
	getUnread     func(ctx context.Context, recipientID uint64) (int64, error)
}

func (f *fakeNotifRepo) Create(context.Context, *mongo.NotificationModel) error { return nil }

func (f *fakeNotifRepo) GetList(ctx context.Context, recipientID uint64, limit, offset int64) ([]*mongo.NotificationModel, error) {
	if f.getList != nil {
		return f.getList(ctx, recipientID, limit, offset)
	}
	return nil, nil
}

func (f *fakeNotifRepo) MarkAllAsRead(ctx context.Context, recipientID uint64) error {
	if f.markAllAsRead != nil {
		return f.markAllAsRead(ctx, recipientID)
	}
	return nil
}

func (f *fakeNotifRepo) GetUnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	if f.getUnread != nil {
		return f.getUnread(ctx, recipientID)
	}
	return 0, nil
}

func (f *fakeNotifRepo) DeleteByActorAndType(context.Context, uint64, uint64, string, uint64) error {
	return nil
}

func (f *fakeNotifRepo) DeleteByEntity(context.Context, []uint64) error { return nil }

func TestGetNotificationList_MarkReadFailureDoesNotFailRequest(t *testing.T) {
	markCalled := false
	repo := &fakeNotifRepo{
		getUnread: func(context.Context, uint64) (int64, error) { return 3, nil },
		getList: func(context.Context, uint64, int64, int64) ([]*mongo.NotificationModel, error) {
			return []*mongo.NotificationModel{
				{RecipientID: 7, ActorID: 2, Type: "like", Message: "赞了你的帖子", CreatedAt: time.Now()},
			}, nil
		},
		markAllAsRead: func(context.Context, uint64) error {
			markCalled = true
			return errors.New("mongo write timeout")
		},
	}
	svc := &notificationServiceImpl{
		notifRepo:  repo,
		userRepo:   &fakeUserRepo{},
		pushClient: push.NewClient(),
	}

	// 角标清零不等待写回确认，标记已读失败只记日志
	result, err := svc.GetNotificationList(context.Background(), 7, 1, 20)
	require.NoError(t, err)
	assert.True(t, markCalled)
	assert.Equal(t, int64(3), result.UnreadCount)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, "like", result.Notifications[0].Type)
}
