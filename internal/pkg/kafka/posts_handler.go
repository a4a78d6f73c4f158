package kafka

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/es"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/repository"
	"Glimpse/internal/session"
	"context"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// PostsHandler 消费 posts 表的变更，同步搜索文档并驱动会话刷新
type PostsHandler struct {
	postRepo   repository.PostRepo
	userRepo   repository.UserRepo
	esPostRepo es.PostRepo
	sessions   *session.Manager
}

func NewPostsHandler(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	esPostRepo es.PostRepo,
	sessions *session.Manager,
) *PostsHandler {
	return &PostsHandler{
		postRepo:   postRepo,
		userRepo:   userRepo,
		esPostRepo: esPostRepo,
		sessions:   sessions,
	}
}

func (s *PostsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("posts consumer setup")
	return nil
}

func (s *PostsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("posts consumer cleanup")
	return nil
}

func (s *PostsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-posts consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-posts process batch error", "err", err)
		return err
	}
	return nil
}

func (s *PostsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "posts")
	if err != nil {
		return err
	}

	row := canalMsg.Data[0]
	postID := StrToUint64(row["id"])
	if postID == 0 {
		return nil
	}

	switch canalMsg.Type {
	case INSERT:
		if err = s.syncToES(ctx, postID); err != nil {
			return err
		}
	case UPDATE:
		if StrToUint64(row["is_deleted"]) == 1 {
			s.cleanupDeleted(ctx, postID)
		} else if err = s.syncToES(ctx, postID); err != nil {
			return err
		}
	case DELETE:
		s.cleanupDeleted(ctx, postID)
	default:
		return nil
	}

	s.sessions.NotifyAll(session.RefreshEvent{
		Table:    canalMsg.Table,
		Action:   canalMsg.Type,
		EntityID: postID,
	})

	log.InfoContext(ctx, "post change processed", "type", canalMsg.Type, "postID", postID)
	return nil
}

func (s *PostsHandler) syncToES(ctx context.Context, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		// 刚被软删，交给删除路径
		return nil
	}

	doc := &es.PostES{
		ID:            post.ID,
		UserID:        post.UserID,
		Caption:       post.Caption,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
	for _, m := range util.NormalizeMedia(post) {
		doc.Media = append(doc.Media, es.PostMediaES{Type: m.Type, URL: m.URL})
	}

	author, err := s.userRepo.GetUserById(ctx, post.UserID)
	if err != nil {
		return errors.Wrap(err, "load post author")
	}
	if author == nil {
		return errors.New("user not found")
	}
	doc.Username = author.Username
	doc.DisplayName = author.Username
	doc.AvatarURL = consts.DefaultAvatarURL
	if author.DisplayName != nil && *author.DisplayName != "" {
		doc.DisplayName = *author.DisplayName
	}
	if author.AvatarURL != nil && *author.AvatarURL != "" {
		doc.AvatarURL = minio.GetPublicURL(*author.AvatarURL)
	}

	return s.esPostRepo.IndexPost(ctx, doc, post.UpdatedAt.UnixMilli())
}

func (s *PostsHandler) cleanupDeleted(ctx context.Context, postID uint64) {
	if err := s.esPostRepo.DeletePost(ctx, postID); err != nil {
		log.WarnContext(ctx, "es post delete failed", "postID", postID, "err", err)
	}
	idStr := strconv.FormatUint(postID, 10)
	_ = redis.DeleteKey(ctx, consts.PostLikeKey+idStr)
	_ = redis.DeleteKey(ctx, consts.PostCommentKey+idStr)
}
