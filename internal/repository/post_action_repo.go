package repository

import (
	"Glimpse/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type PostActionRepo interface {
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID, postID uint64) (int64, error)
	CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error)
	GetLikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error)
	GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, commentID uint64) error
	GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	// GetCommentsByPostID 整个评论区一次取出，按创建时间升序
	GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error)
	GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error)

	// ReplaceReaction 同一用户对同一评论只保留一种态度，先删后插
	ReplaceReaction(ctx context.Context, reaction *model.CommentReaction) error
	DeleteReaction(ctx context.Context, userID, commentID uint64) error
	GetReaction(ctx context.Context, userID, commentID uint64) (*model.CommentReaction, error)
	GetReactionsByUser(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]string, error)
	GetReactionCounts(ctx context.Context, commentID uint64) (likes int64, dislikes int64, err error)
	UpdateCommentReactionCounts(ctx context.Context, commentID uint64, likes, dislikes int64) error
}

type PostActionRepoImpl struct {
	db *gorm.DB
}

func NewPostActionRepo(db *gorm.DB) PostActionRepo {
	return &PostActionRepoImpl{db}
}

func (s *PostActionRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	return s.db.WithContext(ctx).Create(like).Error
}

func (s *PostActionRepoImpl) DeleteLike(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Like{})
	return result.RowsAffected, result.Error
}

func (s *PostActionRepoImpl) CheckLikeExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *PostActionRepoImpl) GetLikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var liked []uint64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	return liked, err
}

func (s *PostActionRepoImpl) GetLikeCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *PostActionRepoImpl) DeleteComment(ctx context.Context, commentID uint64) error {
	return s.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", commentID).
		Update("is_deleted", true).Error
}

func (s *PostActionRepoImpl) GetCommentByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	comment := &model.Comment{}
	err := s.db.WithContext(ctx).
		Where("is_deleted = 0").
		First(comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return comment, nil
}

func (s *PostActionRepoImpl) GetCommentsByPostID(ctx context.Context, postID uint64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND is_deleted = 0", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *PostActionRepoImpl) GetCommentCountByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND is_deleted = 0", postID).
		Count(&count).Error
	return count, err
}

func (s *PostActionRepoImpl) ReplaceReaction(ctx context.Context, reaction *model.CommentReaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND comment_id = ?", reaction.UserID, reaction.CommentID).
			Delete(&model.CommentReaction{}).Error; err != nil {
			return err
		}
		return tx.Create(reaction).Error
	})
}

func (s *PostActionRepoImpl) DeleteReaction(ctx context.Context, userID, commentID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&model.CommentReaction{}).Error
}

func (s *PostActionRepoImpl) GetReaction(ctx context.Context, userID, commentID uint64) (*model.CommentReaction, error) {
	reaction := &model.CommentReaction{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		First(reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return reaction, nil
}

func (s *PostActionRepoImpl) GetReactionsByUser(ctx context.Context, userID uint64, commentIDs []uint64) (map[uint64]string, error) {
	if len(commentIDs) == 0 {
		return map[uint64]string{}, nil
	}
	var reactions []*model.CommentReaction
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Find(&reactions).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uint64]string, len(reactions))
	for _, r := range reactions {
		result[r.CommentID] = r.Kind
	}
	return result, nil
}

func (s *PostActionRepoImpl) GetReactionCounts(ctx context.Context, commentID uint64) (int64, int64, error) {
	var likes, dislikes int64
	err := s.db.WithContext(ctx).Model(&model.CommentReaction{}).
		Where("comment_id = ? AND kind = ?", commentID, "like").
		Count(&likes).Error
	if err != nil {
		return 0, 0, err
	}
	err = s.db.WithContext(ctx).Model(&model.CommentReaction{}).
		Where("comment_id = ? AND kind = ?", commentID, "dislike").
		Count(&dislikes).Error
	return likes, dislikes, err
}

func (s *PostActionRepoImpl) UpdateCommentReactionCounts(ctx context.Context, commentID uint64, likes, dislikes int64) error {
	return s.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", commentID).
		Updates(map[string]interface{}{
			"likes_count":    likes,
			"dislikes_count": dislikes,
		}).Error
}
