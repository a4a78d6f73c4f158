package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

const cacheExpiration = 7 * 24 * time.Hour

type PostActionService interface {
	CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, userID, commentID uint64) error
	// GetThread 返回平铺后的评论区，expanded 为展开全部回复的一级评论集合
	GetThread(ctx context.Context, userID, postID uint64, expanded map[uint64]bool) (*dto.ThreadDTO, error)
	// ReactToComment 点赞和点踩互斥，切换态度时旧的自动撤销
	ReactToComment(ctx context.Context, userID uint64, req *dto.CommentReactionReq) (*dto.CommentReactionDTO, error)
	GetPostCommentCount(ctx context.Context, postID uint64) (int64, error)
}

type postActionServiceImpl struct {
	actionRepo   repository.PostActionRepo
	postRepo     repository.PostRepo
	profiles     ProfileProvider
	notification NotificationService
}

func NewPostActionService(
	actionRepo repository.PostActionRepo,
	postRepo repository.PostRepo,
	profiles ProfileProvider,
	notification NotificationService,
) PostActionService {
	return &postActionServiceImpl{
		actionRepo:   actionRepo,
		postRepo:     postRepo,
		profiles:     profiles,
		notification: notification,
	}
}

func (s *postActionServiceImpl) CreateComment(ctx context.Context, userID uint64, req *dto.CommentCreateDTO) (*dto.CommentDTO, error) {
	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	var parent *model.Comment
	if req.ParentID > 0 {
		parent, err = s.actionRepo.GetCommentByID(ctx, req.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.PostID != req.PostID {
			return nil, ErrCommentNotFound
		}
		// 回复的回复挂到同一条一级评论下
		if parent.ParentID != 0 {
			return nil, ErrCommentDepthLimit
		}
	}

	comment := &model.Comment{
		PostID:    req.PostID,
		UserID:    userID,
		Content:   req.Content,
		ParentID:  req.ParentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err = s.actionRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.markCommentDirty(ctx, req.PostID, 1)

	if post.UserID != userID {
		if err = s.notification.CreateNotificationSafe(
			ctx, post.UserID, userID, consts.NotificationTypeComment, post.ID, "评论了你的帖子"); err != nil {
			log.WarnContext(ctx, "COMMENT_NOTIFICATION_FAILED", "post_id", post.ID, "err", err)
		}
	}
	if parent != nil && parent.UserID != userID && parent.UserID != post.UserID {
		if err = s.notification.CreateNotificationSafe(
			ctx, parent.UserID, userID, consts.NotificationTypeComment, post.ID, "回复了你的评论"); err != nil {
			log.WarnContext(ctx, "REPLY_NOTIFICATION_FAILED", "comment_id", parent.ID, "err", err)
		}
	}

	me := s.profiles.GetProfile(ctx, userID)
	return s.toCommentDTO(comment, me, nil), nil
}

func (s *postActionServiceImpl) DeleteComment(ctx context.Context, userID, commentID uint64) error {
	comment, err := s.actionRepo.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	if err = s.actionRepo.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.markCommentDirty(ctx, comment.PostID, -1)
	return nil
}

func (s *postActionServiceImpl) GetThread(ctx context.Context, userID, postID uint64, expanded map[uint64]bool) (*dto.ThreadDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	comments, err := s.actionRepo.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	commentIDs := make([]uint64, 0, len(comments))
	authorIDs := make([]uint64, 0, len(comments))
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		authorIDs = append(authorIDs, c.UserID)
	}

	var myReactions map[uint64]string
	if userID > 0 {
		myReactions, err = s.actionRepo.GetReactionsByUser(ctx, userID, commentIDs)
		if err != nil {
			log.WarnContext(ctx, "REACTION_HYDRATION_FAILED", "post_id", postID, "err", err)
			myReactions = map[uint64]string{}
		}
	}

	profiles := s.profiles.GetProfiles(ctx, authorIDs)

	dtos := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		var reaction *string
		if kind, ok := myReactions[c.ID]; ok {
			k := kind
			reaction = &k
		}
		dtos = append(dtos, s.toCommentDTO(c, profiles[c.UserID], reaction))
	}

	return &dto.ThreadDTO{
		PostID:  postID,
		Total:   len(dtos),
		Entries: BuildThread(dtos, expanded),
	}, nil
}

func (s *postActionServiceImpl) ReactToComment(ctx context.Context, userID uint64, req *dto.CommentReactionReq) (*dto.CommentReactionDTO, error) {
	comment, err := s.actionRepo.GetCommentByID(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}

	var myReaction *string
	switch req.Action {
	case 1:
		if err = s.actionRepo.ReplaceReaction(ctx, &model.CommentReaction{
			UserID:    userID,
			CommentID: req.CommentID,
			Kind:      req.Kind,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
		myReaction = &req.Kind

		if req.Kind == consts.ReactionLike && comment.UserID != userID {
			if err = s.notification.CreateNotificationSafe(
				ctx, comment.UserID, userID, consts.NotificationTypeCommentLike, comment.PostID, "赞了你的评论"); err != nil {
				log.WarnContext(ctx, "COMMENT_LIKE_NOTIFICATION_FAILED", "comment_id", comment.ID, "err", err)
			}
		}
	case 2:
		if err = s.actionRepo.DeleteReaction(ctx, userID, req.CommentID); err != nil {
			return nil, err
		}
		if req.Kind == consts.ReactionLike {
			s.notification.RemoveNotification(ctx, comment.UserID, userID, consts.NotificationTypeCommentLike, comment.PostID)
		}
	default:
		return nil, ErrParamInvalid
	}

	likes, dislikes, err := s.actionRepo.GetReactionCounts(ctx, req.CommentID)
	if err != nil {
		return nil, err
	}

	s.cacheReactionCounts(ctx, req.CommentID, likes, dislikes)

	return &dto.CommentReactionDTO{
		CommentID:     req.CommentID,
		LikesCount:    int(likes),
		DislikesCount: int(dislikes),
		MyReaction:    myReaction,
	}, nil
}

func (s *postActionServiceImpl) GetPostCommentCount(ctx context.Context, postID uint64) (int64, error) {
	key := consts.PostCommentKey + strconv.FormatUint(postID, 10)
	count, err := redis.GetInt64(ctx, key)
	if err == nil {
		return count, nil
	}
	realCount, err := s.actionRepo.GetCommentCountByPostID(ctx, postID)
	if err != nil {
		return 0, err
	}
	_ = redis.SetWithExpiration(ctx, key, realCount, cacheExpiration)
	return realCount, nil
}

func (s *postActionServiceImpl) toCommentDTO(c *model.Comment, author *Profile, myReaction *string) *dto.CommentDTO {
	d := &dto.CommentDTO{}
	_ = copier.Copy(d, c)
	d.MyReaction = myReaction
	d.CreatedAt = c.CreatedAt.UTC().Format(time.RFC3339)
	if author != nil {
		d.Username = author.Username
		d.DisplayName = author.DisplayName
		d.AvatarURL = author.AvatarURL
	}
	return d
}

// markCommentDirty 维护 Redis 评论计数并登记脏帖子，定时任务批量回写
func (s *postActionServiceImpl) markCommentDirty(ctx context.Context, postID uint64, delta int) {
	key := consts.PostCommentKey + strconv.FormatUint(postID, 10)
	var err error
	if delta > 0 {
		err = redis.Incr(ctx, key)
	} else {
		err = redis.Decr(ctx, key)
	}
	if err != nil {
		log.WarnContext(ctx, "COMMENT_COUNT_CACHE_FAILED", "post_id", postID, "err", err)
		return
	}
	_ = redis.SAdd(ctx, consts.PostDirtyKey, postID)
}

// cacheReactionCounts 评论互动数落 Redis，登记脏评论等定时任务回写
func (s *postActionServiceImpl) cacheReactionCounts(ctx context.Context, commentID uint64, likes, dislikes int64) {
	likeKey := consts.CommentReactionKey + strconv.FormatUint(commentID, 10) + ":like"
	dislikeKey := consts.CommentReactionKey + strconv.FormatUint(commentID, 10) + ":dislike"
	_ = redis.SetWithExpiration(ctx, likeKey, likes, cacheExpiration)
	_ = redis.SetWithExpiration(ctx, dislikeKey, dislikes, cacheExpiration)
	_ = redis.SAdd(ctx, consts.CommentDirtyKey, commentID)
}
