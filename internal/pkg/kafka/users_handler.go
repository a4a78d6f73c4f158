package kafka

import (
	"Glimpse/internal/service"
	"Glimpse/internal/session"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// UsersHandler 消费 users 表的变更，作废进程内资料缓存
type UsersHandler struct {
	profiles service.ProfileProvider
	sessions *session.Manager
}

func NewUsersHandler(profiles service.ProfileProvider, sessions *session.Manager) *UsersHandler {
	return &UsersHandler{profiles: profiles, sessions: sessions}
}

func (s *UsersHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("users consumer setup")
	return nil
}

func (s *UsersHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("users consumer cleanup")
	return nil
}

func (s *UsersHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-users consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-users process batch error", "err", err)
		return err
	}
	return nil
}

func (s *UsersHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "users")
	if err != nil {
		return err
	}

	if canalMsg.Type != UPDATE && canalMsg.Type != DELETE {
		return nil
	}

	userID := StrToUint64(canalMsg.Data[0]["id"])
	if userID == 0 {
		return nil
	}

	s.profiles.Invalidate(userID)

	// 头像昵称印在帖子卡片上，全量会话整窗重拉
	s.sessions.NotifyAll(session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: userID,
	})

	log.InfoContext(ctx, "user change processed", "type", canalMsg.Type, "userID", userID)
	return nil
}
