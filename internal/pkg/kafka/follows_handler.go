package kafka

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/session"
	"context"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
)

// FollowsHandler 消费 follows 表的变更
type FollowsHandler struct {
	sessions *session.Manager
}

func NewFollowsHandler(sessions *session.Manager) *FollowsHandler {
	return &FollowsHandler{sessions: sessions}
}

func (s *FollowsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("follows consumer setup")
	return nil
}

func (s *FollowsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("follows consumer cleanup")
	return nil
}

func (s *FollowsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-follows consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-follows process batch error", "err", err)
		return err
	}
	return nil
}

func (s *FollowsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "follows")
	if err != nil {
		return err
	}

	switch canalMsg.Type {
	case INSERT, DELETE:
	default:
		return nil
	}

	row := canalMsg.Data[0]
	followerID := StrToUint64(row["follower_id"])
	followingID := StrToUint64(row["following_id"])

	// 计数缓存作废，下次读取回源
	_ = redis.DeleteKey(ctx, consts.UserFollowingCountKey+strconv.FormatUint(followerID, 10))
	_ = redis.DeleteKey(ctx, consts.UserFollowerCountKey+strconv.FormatUint(followingID, 10))

	// 关注加成影响排序，两侧用户的会话都要刷新
	event := session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: followingID,
	}
	s.sessions.NotifyUser(followerID, event)
	s.sessions.NotifyUser(followingID, event)

	log.InfoContext(ctx, "follow change processed",
		"type", canalMsg.Type, "followerID", followerID, "followingID", followingID)
	return nil
}
