package repository

import (
	"Glimpse/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepo interface {
	GetFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error)
	GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error)
	GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error)
	GetFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetFollow(ctx context.Context, followerID uint64, followingID uint64) (*model.Follow, error)
	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, follow *model.Follow) error
}

type FollowRepoImpl struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) FollowRepo {
	return &FollowRepoImpl{db: db}
}

// GetFollowers 获取用户的粉丝列表
func (s *FollowRepoImpl) GetFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	result := s.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&follows)

	if result.Error != nil {
		return nil, result.Error
	}
	return follows, nil
}

// GetFollowing 获取用户的关注列表
func (s *FollowRepoImpl) GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	result := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&follows)

	if result.Error != nil {
		return nil, result.Error
	}
	return follows, nil
}

// GetFollowingIDs 获取用户关注的全部用户 ID，用于信息流加成
func (s *FollowRepoImpl) GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// GetFollowerCount 获取用户的粉丝数量
func (s *FollowRepoImpl) GetFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("following_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetFollowingCount 获取用户的关注数量
func (s *FollowRepoImpl) GetFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count)

	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetFollow 获取关注关系
func (s *FollowRepoImpl) GetFollow(ctx context.Context, followerID uint64, followingID uint64) (*model.Follow, error) {
	var follow model.Follow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &follow, nil
}

// CreateFollow 创建关注关系
func (s *FollowRepoImpl) CreateFollow(ctx context.Context, follow *model.Follow) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			DoNothing: true,
		}).
		Create(follow).Error
}

// DeleteFollow 删除关注关系
func (s *FollowRepoImpl) DeleteFollow(ctx context.Context, follow *model.Follow) error {
	return s.db.WithContext(ctx).Delete(follow).Error
}
