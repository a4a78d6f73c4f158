package repository

import (
	"Glimpse/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post, media []*model.PostMedia) error
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error)
	// GetLatestWindow 取最新的一窗帖子，信息流排序在内存里做
	GetLatestWindow(ctx context.Context, limit int) ([]*model.Post, error)
	GetPostsByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Post, error)
	UpdateCaption(ctx context.Context, id uint64, caption string) error
	UpdatePostCounts(ctx context.Context, id uint64, likesCount, commentsCount int64) error
	// DeletePost 软删帖子并清掉它的点赞和评论
	DeletePost(ctx context.Context, id uint64) error
	// GetFirstLikers 取每个帖子最早点赞的用户
	GetFirstLikers(ctx context.Context, postIDs []uint64) (map[uint64]uint64, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s PostRepoImpl) CreatePost(ctx context.Context, post *model.Post, media []*model.PostMedia) error {
	if len(media) == 0 {
		return s.db.WithContext(ctx).Create(post).Error
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, m := range media {
			m.PostID = post.ID
		}
		return tx.Create(media).Error
	})
}

func (s PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Media").
		Where("is_deleted = 0").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s PostRepoImpl) GetPostByIds(ctx context.Context, ids []uint64) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Media").
		Where("id IN ? AND is_deleted = 0", ids).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s PostRepoImpl) GetLatestWindow(ctx context.Context, limit int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Media").
		Where("is_deleted = 0").
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s PostRepoImpl) GetPostsByUserID(ctx context.Context, userID uint64, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Preload("Media").
		Where("user_id = ? AND is_deleted = 0", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (s PostRepoImpl) UpdateCaption(ctx context.Context, id uint64, caption string) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Update("caption", caption).Error
}

func (s PostRepoImpl) UpdatePostCounts(ctx context.Context, id uint64, likesCount, commentsCount int64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"likes_count":    likesCount,
			"comments_count": commentsCount,
		}).Error
}

func (s PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Post{}).Where("id = ?", id).Update("is_deleted", true).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}

		var commentIDs []uint64
		if err := tx.Model(&model.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&model.CommentReaction{}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.Comment{}).Where("post_id = ?", id).Update("is_deleted", true).Error
	})
}

func (s PostRepoImpl) GetFirstLikers(ctx context.Context, postIDs []uint64) (map[uint64]uint64, error) {
	if len(postIDs) == 0 {
		return map[uint64]uint64{}, nil
	}

	type row struct {
		PostID uint64
		UserID uint64
	}
	var rows []row
	// 每个帖子取 created_at 最早的一条点赞
	err := s.db.WithContext(ctx).
		Model(&model.Like{}).
		Select("post_id, user_id").
		Where("(post_id, created_at) IN (?)",
			s.db.Model(&model.Like{}).
				Select("post_id, MIN(created_at)").
				Where("post_id IN ?", postIDs).
				Group("post_id"),
		).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uint64]uint64, len(rows))
	for _, r := range rows {
		if _, ok := result[r.PostID]; !ok {
			result[r.PostID] = r.UserID
		}
	}
	return result, nil
}
