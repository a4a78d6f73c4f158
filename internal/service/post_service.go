package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/es"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/pkg/mongo"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/repository"
	"context"
	log "log/slog"
	"strconv"
	"time"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO) (*dto.PostDTO, error)
	UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error)
	// DeletePost 连带清理点赞、评论、搜索文档和相关通知
	DeletePost(ctx context.Context, userID, postID uint64) error
	GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error)
	GetUserPosts(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.PostDTO, error)
}

type postServiceImpl struct {
	postRepo   repository.PostRepo
	userRepo   repository.UserRepo
	esPostRepo es.PostRepo
	notifRepo  mongo.NotificationRepo
	profiles   ProfileProvider
}

func NewPostService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	esPostRepo es.PostRepo,
	notifRepo mongo.NotificationRepo,
	profiles ProfileProvider,
) PostService {
	return &postServiceImpl{
		postRepo:   postRepo,
		userRepo:   userRepo,
		esPostRepo: esPostRepo,
		notifRepo:  notifRepo,
		profiles:   profiles,
	}
}

func (s *postServiceImpl) CreatePost(ctx context.Context, userID uint64, req *dto.CreatePostDTO) (*dto.PostDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	post := &model.Post{
		UserID:    userID,
		Caption:   req.Caption,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	media := make([]*model.PostMedia, 0, len(req.Media))
	for i, m := range req.Media {
		if m.Type != consts.MediaTypeImage && m.Type != consts.MediaTypeVideo {
			return nil, ErrFileNotSupported
		}
		media = append(media, &model.PostMedia{
			MediaType: m.Type,
			MediaURL:  m.URL,
			SortOrder: int8(i),
			CreatedAt: time.Now(),
		})
	}

	if err := s.postRepo.CreatePost(ctx, post, media); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateUserPostsCount(ctx, userID, 1); err != nil {
		log.WarnContext(ctx, "POSTS_COUNT_SYNC_FAILED", "user_id", userID, "err", err)
	}

	for _, m := range media {
		post.Media = append(post.Media, *m)
	}
	s.indexPost(ctx, post)
	log.InfoContext(ctx, "POST_CREATED", "post_id", post.ID, "user_id", userID)

	return s.toPostDTO(ctx, post), nil
}

func (s *postServiceImpl) UpdatePost(ctx context.Context, userID, postID uint64, req *dto.UpdatePostDTO) (*dto.PostDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrNotOwner
	}

	if err = s.postRepo.UpdateCaption(ctx, postID, req.Caption); err != nil {
		return nil, err
	}
	post.Caption = req.Caption
	post.UpdatedAt = time.Now()

	s.indexPost(ctx, post)
	return s.toPostDTO(ctx, post), nil
}

func (s *postServiceImpl) DeletePost(ctx context.Context, userID, postID uint64) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrNotOwner
	}

	if err = s.postRepo.DeletePost(ctx, postID); err != nil {
		return err
	}

	if err = s.userRepo.UpdateUserPostsCount(ctx, userID, -1); err != nil {
		log.WarnContext(ctx, "POSTS_COUNT_SYNC_FAILED", "user_id", userID, "err", err)
	}

	if err = s.esPostRepo.DeletePost(ctx, postID); err != nil {
		log.WarnContext(ctx, "ES_POST_DELETE_FAILED", "post_id", postID, "err", err)
	}
	if err = s.notifRepo.DeleteByEntity(ctx, []uint64{postID}); err != nil {
		log.WarnContext(ctx, "NOTIFICATION_CASCADE_FAILED", "post_id", postID, "err", err)
	}

	idStr := strconv.FormatUint(postID, 10)
	_ = redis.DeleteKey(ctx, consts.PostLikeKey+idStr)
	_ = redis.DeleteKey(ctx, consts.PostCommentKey+idStr)

	log.InfoContext(ctx, "POST_DELETED", "post_id", postID, "user_id", userID)
	return nil
}

func (s *postServiceImpl) GetPost(ctx context.Context, postID uint64) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return s.toPostDTO(ctx, post), nil
}

func (s *postServiceImpl) GetUserPosts(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.PostDTO, error) {
	posts, err := s.postRepo.GetPostsByUserID(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		res = append(res, s.toPostDTO(ctx, p))
	}
	return res, nil
}

func (s *postServiceImpl) toPostDTO(ctx context.Context, post *model.Post) *dto.PostDTO {
	d := &dto.PostDTO{
		ID:            post.ID,
		UserID:        post.UserID,
		Caption:       post.Caption,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     post.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if author := s.profiles.GetProfile(ctx, post.UserID); author != nil {
		d.Username = author.Username
		d.DisplayName = author.DisplayName
		d.AvatarURL = author.AvatarURL
	}

	media := util.NormalizeMedia(post)
	d.Media = make([]dto.MediaItemDTO, 0, len(media))
	for _, m := range media {
		d.Media = append(d.Media, dto.MediaItemDTO{Type: m.Type, URL: minio.GetPublicURL(m.URL)})
	}
	return d
}

// indexPost 尽力同步帖子搜索文档，失败只记日志
func (s *postServiceImpl) indexPost(ctx context.Context, post *model.Post) {
	author := s.profiles.GetProfile(ctx, post.UserID)

	doc := &es.PostES{
		ID:            post.ID,
		UserID:        post.UserID,
		Caption:       post.Caption,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
	}
	if author != nil {
		doc.Username = author.Username
		doc.DisplayName = author.DisplayName
		doc.AvatarURL = author.AvatarURL
	}
	for _, m := range util.NormalizeMedia(post) {
		doc.Media = append(doc.Media, es.PostMediaES{Type: m.Type, URL: m.URL})
	}

	if err := s.esPostRepo.IndexPost(ctx, doc, post.UpdatedAt.UnixMilli()); err != nil {
		log.WarnContext(ctx, "ES_POST_INDEX_FAILED", "post_id", post.ID, "err", err)
	}
}
