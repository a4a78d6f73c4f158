package kafka

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/session"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// LikesHandler 消费 likes 表的变更，维护缓存计数并驱动在线会话刷新
type LikesHandler struct {
	sessions *session.Manager
}

func NewLikesHandler(sessions *session.Manager) *LikesHandler {
	return &LikesHandler{sessions: sessions}
}

func (s *LikesHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("likes consumer setup")
	return nil
}

func (s *LikesHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("likes consumer cleanup")
	return nil
}

func (s *LikesHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-likes consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-likes process batch error", "err", err)
		return err
	}
	return nil
}

func (s *LikesHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "likes")
	if err != nil {
		return err
	}

	// 点赞是物理增删，UPDATE 不会出现
	switch canalMsg.Type {
	case INSERT, DELETE:
	default:
		return nil
	}

	row := canalMsg.Data[0]
	postID := StrToUint64(row["post_id"])

	ExecAction(ctx, ActionParams{
		TargetID:       postID,
		CountKeyPrefix: consts.PostLikeKey,
		DirtyKey:       consts.PostDirtyKey,
		IsIncrement:    canalMsg.Type == INSERT,
	})

	// 点赞数和首赞人都在帖子卡片上，全量会话整窗重拉
	s.sessions.NotifyAll(session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: postID,
	})

	log.InfoContext(ctx, "like change processed", "type", canalMsg.Type, "postID", postID)
	return nil
}
