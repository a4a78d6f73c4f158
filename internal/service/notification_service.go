package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/pkg/mongo"
	"Glimpse/internal/pkg/push"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const unreadCacheExpiration = 7 * 24 * time.Hour

// 同一动作短时间内重复触发只产生一条通知
const dedupeWindow = 24 * time.Hour

type NotificationService interface {
	// CreateNotificationSafe 自己触发的动作不通知自己，重复动作不重复通知
	CreateNotificationSafe(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64, message string) error
	// RemoveNotification 取消点赞/取关时回收对应通知，失败只记日志
	RemoveNotification(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64)
	// GetNotificationList 拉取列表的同时全部标记已读并清零未读数
	GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) (*dto.NotificationListDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error)
	// RefreshUnreadCount 以 Mongo 为准重算未读数并推送角标
	RefreshUnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type notificationServiceImpl struct {
	notifRepo  mongo.NotificationRepo
	userRepo   repository.UserRepo
	pushClient *push.Client
}

func NewNotificationService(notifRepo mongo.NotificationRepo, userRepo repository.UserRepo, pushClient *push.Client) NotificationService {
	return &notificationServiceImpl{
		notifRepo:  notifRepo,
		userRepo:   userRepo,
		pushClient: pushClient,
	}
}

func (s *notificationServiceImpl) CreateNotificationSafe(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64, message string) error {
	if recipientID == 0 || recipientID == actorID {
		return nil
	}

	dedupeKey := fmt.Sprintf("%s%d:%d:%s:%d", consts.NotificationDedupeKey, recipientID, actorID, notifType, entityID)
	ok, err := redis.TryLock(ctx, dedupeKey, 1, dedupeWindow, 0)
	if err != nil {
		log.WarnContext(ctx, "NOTIFICATION_DEDUPE_UNAVAILABLE", "err", err)
	} else if !ok {
		return nil
	}

	msg := &mongo.NotificationModel{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        notifType,
		EntityID:    entityID,
		Message:     message,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if err = s.notifRepo.Create(ctx, msg); err != nil {
		return err
	}

	count, err := s.RefreshUnreadCount(ctx, recipientID)
	if err != nil {
		log.WarnContext(ctx, "UNREAD_COUNT_REFRESH_FAILED", "user_id", recipientID, "err", err)
		return nil
	}
	log.InfoContext(ctx, "NOTIFICATION_CREATED",
		"recipient_id", recipientID, "actor_id", actorID, "type", notifType, "unread", count)
	return nil
}

func (s *notificationServiceImpl) RemoveNotification(ctx context.Context, recipientID, actorID uint64, notifType string, entityID uint64) {
	if recipientID == 0 || recipientID == actorID {
		return
	}

	dedupeKey := fmt.Sprintf("%s%d:%d:%s:%d", consts.NotificationDedupeKey, recipientID, actorID, notifType, entityID)
	_ = redis.DeleteKey(ctx, dedupeKey)

	if err := s.notifRepo.DeleteByActorAndType(ctx, recipientID, actorID, notifType, entityID); err != nil {
		log.WarnContext(ctx, "NOTIFICATION_RECYCLE_FAILED",
			"recipient_id", recipientID, "actor_id", actorID, "type", notifType, "err", err)
		return
	}
	if _, err := s.RefreshUnreadCount(ctx, recipientID); err != nil {
		log.WarnContext(ctx, "UNREAD_COUNT_REFRESH_FAILED", "user_id", recipientID, "err", err)
	}
}

func (s *notificationServiceImpl) GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) (*dto.NotificationListDTO, error) {
	limit := int64(pageSize)
	offset := int64((page - 1) * pageSize)

	unreadBefore, err := s.notifRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, err := s.notifRepo.GetList(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	// 进入通知页即视为全部已读，角标先清零，不等 Mongo 写回
	key := consts.UserUnreadCountKey + strconv.FormatUint(userID, 10)
	_ = redis.SetWithExpiration(ctx, key, 0, unreadCacheExpiration)
	s.publishBadge(ctx, userID, 0)
	if err = s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
		log.WarnContext(ctx, "NOTIFICATION_MARK_READ_FAILED", "user_id", userID, "err", err)
	}

	actorIDs := make([]uint64, 0, len(list))
	for _, m := range list {
		if m.ActorID > 0 {
			actorIDs = append(actorIDs, m.ActorID)
		}
	}
	actors := s.getActors(ctx, actorIDs)

	res := make([]*dto.NotificationDTO, 0, len(list))
	for _, m := range list {
		d := &dto.NotificationDTO{
			ID:        m.ID.Hex(),
			ActorID:   m.ActorID,
			Type:      m.Type,
			EntityID:  m.EntityID,
			Message:   m.Message,
			IsRead:    m.IsRead,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		}
		if actor, ok := actors[m.ActorID]; ok {
			d.ActorUsername = actor.username
			d.AvatarURL = actor.avatarURL
		}
		res = append(res, d)
	}

	return &dto.NotificationListDTO{
		Notifications: res,
		UnreadCount:   unreadBefore,
	}, nil
}

func (s *notificationServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.UnreadCountDTO, error) {
	key := consts.UserUnreadCountKey + strconv.FormatUint(userID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return &dto.UnreadCountDTO{UnreadCount: count}, nil
	}

	count, err = s.RefreshUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountDTO{UnreadCount: count}, nil
}

func (s *notificationServiceImpl) RefreshUnreadCount(ctx context.Context, userID uint64) (int64, error) {
	count, err := s.notifRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	key := consts.UserUnreadCountKey + strconv.FormatUint(userID, 10)
	_ = redis.SetWithExpiration(ctx, key, count, unreadCacheExpiration)
	s.publishBadge(ctx, userID, count)
	return count, nil
}

// publishBadge 经 Redis 广播给在线 WS 连接，再尽力推给移动端网关
func (s *notificationServiceImpl) publishBadge(ctx context.Context, userID uint64, count int64) {
	payload, _ := json.Marshal(&dto.UnreadCountDTO{UnreadCount: count})
	channel := consts.UserBadgeChannelKey + strconv.FormatUint(userID, 10)
	if err := redis.Publish(ctx, channel, payload); err != nil {
		log.WarnContext(ctx, "BADGE_PUBLISH_FAILED", "user_id", userID, "err", err)
	}
	s.pushClient.PushBadge(ctx, userID, count)
}

type actorInfo struct {
	username  string
	avatarURL string
}

func (s *notificationServiceImpl) getActors(ctx context.Context, ids []uint64) map[uint64]actorInfo {
	result := make(map[uint64]actorInfo)
	if len(ids) == 0 {
		return result
	}
	users, err := s.userRepo.GetUserByIds(ctx, ids)
	if err != nil {
		log.WarnContext(ctx, "ACTOR_HYDRATION_FAILED", "err", err)
		return result
	}
	for _, u := range users {
		info := actorInfo{username: u.Username, avatarURL: consts.DefaultAvatarURL}
		if u.AvatarURL != nil && *u.AvatarURL != "" {
			info.avatarURL = minio.GetPublicURL(*u.AvatarURL)
		}
		result[u.ID] = info
	}
	return result
}
