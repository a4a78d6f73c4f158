package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"
)

const followLockExpiration = 5 * time.Second

type fetchCountFunc func(ctx context.Context, userID uint64) (int64, error)

type FollowService interface {
	// ToggleFollow 同一对用户的切换同时只允许一个在途，重复触发直接拒绝
	ToggleFollow(ctx context.Context, followerID, targetID uint64) (*dto.FollowResultDTO, error)
	IsFollowing(ctx context.Context, followerID, targetID uint64) (bool, error)
	GetFollowerCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint64) (int64, error)
	GetFollowers(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error)
	GetFollowing(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error)
}

type followServiceImpl struct {
	followRepo   repository.FollowRepo
	userRepo     repository.UserRepo
	profiles     ProfileProvider
	notification NotificationService

	tryLock func(ctx context.Context, key string) (bool, error)
	unLock  func(ctx context.Context, key string)
}

func NewFollowService(
	followRepo repository.FollowRepo,
	userRepo repository.UserRepo,
	profiles ProfileProvider,
	notification NotificationService,
) FollowService {
	return &followServiceImpl{
		followRepo:   followRepo,
		userRepo:     userRepo,
		profiles:     profiles,
		notification: notification,
		tryLock: func(ctx context.Context, key string) (bool, error) {
			return redis.TryLock(ctx, key, 1, followLockExpiration, 0)
		},
		unLock: func(ctx context.Context, key string) {
			redis.UnLock(ctx, key, 1)
		},
	}
}

func (s *followServiceImpl) ToggleFollow(ctx context.Context, followerID, targetID uint64) (*dto.FollowResultDTO, error) {
	if followerID == targetID {
		return nil, ErrUserFollowSelf
	}

	target, err := s.userRepo.GetUserById(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	// 连点保护：同一对用户的在途操作只放行第一个
	lockKey := fmt.Sprintf("%s%d:%d", consts.FollowToggleLock, followerID, targetID)
	locked, err := s.tryLock(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrFollowInFlight
	}
	defer s.unLock(ctx, lockKey)

	existing, err := s.followRepo.GetFollow(ctx, followerID, targetID)
	if err != nil {
		return nil, err
	}

	nowFollowing := existing == nil
	if nowFollowing {
		err = s.followRepo.CreateFollow(ctx, &model.Follow{
			FollowerID:  followerID,
			FollowingID: targetID,
			CreatedAt:   time.Now(),
		})
	} else {
		err = s.followRepo.DeleteFollow(ctx, existing)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateCounts(ctx, followerID, targetID)
	s.syncUserCounts(ctx, followerID, targetID)

	if nowFollowing {
		if err = s.notification.CreateNotificationSafe(
			ctx, targetID, followerID, consts.NotificationTypeFollow, followerID, "关注了你"); err != nil {
			log.WarnContext(ctx, "FOLLOW_NOTIFICATION_FAILED", "target_id", targetID, "err", err)
		}
	} else {
		s.notification.RemoveNotification(ctx, targetID, followerID, consts.NotificationTypeFollow, followerID)
	}

	followerCount, err := s.GetFollowerCount(ctx, targetID)
	if err != nil {
		return nil, err
	}

	return &dto.FollowResultDTO{
		UserID:         targetID,
		IsFollowing:    nowFollowing,
		FollowersCount: followerCount,
	}, nil
}

func (s *followServiceImpl) IsFollowing(ctx context.Context, followerID, targetID uint64) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	follow, err := s.followRepo.GetFollow(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

func (s *followServiceImpl) GetFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	return s.getCountCommon(ctx, userID, consts.UserFollowerCountKey, s.followRepo.GetFollowerCount)
}

func (s *followServiceImpl) GetFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	return s.getCountCommon(ctx, userID, consts.UserFollowingCountKey, s.followRepo.GetFollowingCount)
}

func (s *followServiceImpl) GetFollowers(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error) {
	follows, err := s.followRepo.GetFollowers(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.GetFollowerCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowerID)
	}
	return &dto.FollowListDTO{Users: s.toUserDTOs(ctx, ids), Total: total}, nil
}

func (s *followServiceImpl) GetFollowing(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error) {
	follows, err := s.followRepo.GetFollowing(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.GetFollowingCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowingID)
	}
	return &dto.FollowListDTO{Users: s.toUserDTOs(ctx, ids), Total: total}, nil
}

func (s *followServiceImpl) toUserDTOs(ctx context.Context, ids []uint64) []*dto.UserDTO {
	profiles := s.profiles.GetProfiles(ctx, ids)
	users := make([]*dto.UserDTO, 0, len(ids))
	for _, id := range ids {
		p, ok := profiles[id]
		if !ok {
			continue
		}
		users = append(users, &dto.UserDTO{
			UserID:      p.UserID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
		})
	}
	return users
}

func (s *followServiceImpl) getCountCommon(ctx context.Context, userID uint64, keyPrefix string, fetchDB fetchCountFunc) (int64, error) {
	key := keyPrefix + strconv.FormatUint(userID, 10)

	valStr, err := redis.GetValue(ctx, key)
	if err == nil && valStr != "" {
		return strconv.ParseInt(valStr, 10, 64)
	}

	count, err := fetchDB(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = redis.SetWithExpiration(ctx, key, count, time.Hour)
	return count, nil
}

func (s *followServiceImpl) invalidateCounts(ctx context.Context, followerID, targetID uint64) {
	_ = redis.DeleteKey(ctx, consts.UserFollowingCountKey+strconv.FormatUint(followerID, 10))
	_ = redis.DeleteKey(ctx, consts.UserFollowerCountKey+strconv.FormatUint(targetID, 10))
}

// syncUserCounts 把双方的关注/粉丝数回写 users 表，失败只记日志
func (s *followServiceImpl) syncUserCounts(ctx context.Context, followerID, targetID uint64) {
	for _, id := range []uint64{followerID, targetID} {
		followers, err := s.followRepo.GetFollowerCount(ctx, id)
		if err != nil {
			log.WarnContext(ctx, "FOLLOW_COUNT_SYNC_FAILED", "user_id", id, "err", err)
			continue
		}
		following, err := s.followRepo.GetFollowingCount(ctx, id)
		if err != nil {
			log.WarnContext(ctx, "FOLLOW_COUNT_SYNC_FAILED", "user_id", id, "err", err)
			continue
		}
		if err = s.userRepo.UpdateUserFollowCount(ctx, id, followers, following); err != nil {
			log.WarnContext(ctx, "FOLLOW_COUNT_SYNC_FAILED", "user_id", id, "err", err)
		}
	}
}
