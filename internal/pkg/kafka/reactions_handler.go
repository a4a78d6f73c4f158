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

// ReactionsHandler 消费 comment_reactions 表的变更
// 点赞点踩互斥由写入方保证，这里只负责缓存失效和会话刷新
type ReactionsHandler struct {
	sessions *session.Manager
}

func NewReactionsHandler(sessions *session.Manager) *ReactionsHandler {
	return &ReactionsHandler{sessions: sessions}
}

func (s *ReactionsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("reactions consumer setup")
	return nil
}

func (s *ReactionsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("reactions consumer cleanup")
	return nil
}

func (s *ReactionsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-reactions consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-reactions process batch error", "err", err)
		return err
	}
	return nil
}

func (s *ReactionsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "comment_reactions")
	if err != nil {
		return err
	}

	switch canalMsg.Type {
	case INSERT, UPDATE, DELETE:
	default:
		return nil
	}

	commentID := StrToUint64(canalMsg.Data[0]["comment_id"])
	if commentID == 0 {
		return nil
	}

	// 缓存的互动数直接作废，下次读取回源重算
	idStr := strconv.FormatUint(commentID, 10)
	_ = redis.DeleteKey(ctx, consts.CommentReactionKey+idStr+":like")
	_ = redis.DeleteKey(ctx, consts.CommentReactionKey+idStr+":dislike")
	_ = redis.SAdd(ctx, consts.CommentDirtyKey, commentID)

	s.sessions.NotifyAll(session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: commentID,
	})

	log.InfoContext(ctx, "reaction change processed", "type", canalMsg.Type, "commentID", commentID)
	return nil
}
