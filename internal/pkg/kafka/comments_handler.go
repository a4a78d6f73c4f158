package kafka

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/session"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// CommentsHandler 消费 comments 表的变更
type CommentsHandler struct {
	sessions *session.Manager
}

func NewCommentsHandler(sessions *session.Manager) *CommentsHandler {
	return &CommentsHandler{sessions: sessions}
}

func (s *CommentsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("comments consumer setup")
	return nil
}

func (s *CommentsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("comments consumer cleanup")
	return nil
}

func (s *CommentsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-comments consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-comments process batch error", "err", err)
		return err
	}
	return nil
}

func (s *CommentsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "comments")
	if err != nil {
		return err
	}

	row := canalMsg.Data[0]
	postID := StrToUint64(row["post_id"])

	switch canalMsg.Type {
	case INSERT:
		ExecAction(ctx, ActionParams{
			TargetID:       postID,
			CountKeyPrefix: consts.PostCommentKey,
			DirtyKey:       consts.PostDirtyKey,
			IsIncrement:    true,
		})
	case UPDATE:
		// 评论删除走软删，is_deleted 翻转成 1 时扣计数
		if !flippedToDeleted(canalMsg) {
			s.notifyRefresh(canalMsg, postID)
			return nil
		}
		ExecAction(ctx, ActionParams{
			TargetID:       postID,
			CountKeyPrefix: consts.PostCommentKey,
			DirtyKey:       consts.PostDirtyKey,
			IsIncrement:    false,
		})
	case DELETE:
		ExecAction(ctx, ActionParams{
			TargetID:       postID,
			CountKeyPrefix: consts.PostCommentKey,
			DirtyKey:       consts.PostDirtyKey,
			IsIncrement:    false,
		})
	default:
		return nil
	}

	s.notifyRefresh(canalMsg, postID)
	log.InfoContext(ctx, "comment change processed", "type", canalMsg.Type, "postID", postID)
	return nil
}

func (s *CommentsHandler) notifyRefresh(canalMsg *CanalMessage, postID uint64) {
	s.sessions.NotifyAll(session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: postID,
	})
}

// flippedToDeleted 判断这次 UPDATE 是否把 is_deleted 从 0 翻到 1
func flippedToDeleted(msg *CanalMessage) bool {
	if len(msg.Old) == 0 {
		return false
	}
	if _, changed := msg.Old[0]["is_deleted"]; !changed {
		return false
	}
	return StrToUint64(msg.Data[0]["is_deleted"]) == 1
}
