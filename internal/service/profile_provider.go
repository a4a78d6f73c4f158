package service

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/repository"
	"context"
	"fmt"
	log "log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

const profileCacheSize = 4096

// Profile 信息流和评论区展示用的精简资料
type Profile struct {
	UserID      uint64
	Username    string
	DisplayName string
	AvatarURL   string
}

// ProfileProvider 批量补全用户资料，进程内 LRU 挡一层数据库
type ProfileProvider interface {
	GetProfiles(ctx context.Context, ids []uint64) map[uint64]*Profile
	GetProfile(ctx context.Context, id uint64) *Profile
	// Invalidate 用户改资料后由变更订阅调用
	Invalidate(id uint64)
}

type profileProviderImpl struct {
	userRepo repository.UserRepo
	cache    *lru.Cache[uint64, *Profile]
}

func NewProfileProvider(userRepo repository.UserRepo) ProfileProvider {
	cache, _ := lru.New[uint64, *Profile](profileCacheSize)
	return &profileProviderImpl{
		userRepo: userRepo,
		cache:    cache,
	}
}

func (s *profileProviderImpl) GetProfiles(ctx context.Context, ids []uint64) map[uint64]*Profile {
	result := make(map[uint64]*Profile, len(ids))

	var missing []uint64
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := result[id]; ok {
			continue
		}
		if p, ok := s.cache.Get(id); ok {
			result[id] = p
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		users, err := s.userRepo.GetUserByIds(ctx, missing)
		if err != nil {
			log.WarnContext(ctx, "PROFILE_HYDRATION_FAILED", "count", len(missing), "err", err)
		} else {
			for _, u := range users {
				p := &Profile{
					UserID:      u.ID,
					Username:    u.Username,
					DisplayName: u.Username,
					AvatarURL:   consts.DefaultAvatarURL,
				}
				if u.DisplayName != nil && *u.DisplayName != "" {
					p.DisplayName = *u.DisplayName
				}
				if u.AvatarURL != nil && *u.AvatarURL != "" {
					p.AvatarURL = minio.GetPublicURL(*u.AvatarURL)
				}
				s.cache.Add(u.ID, p)
				result[u.ID] = p
			}
		}
	}

	// 资料行缺失时合成占位，信息流不因孤儿数据开天窗
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := result[id]; !ok {
			result[id] = &Profile{
				UserID:      id,
				Username:    fmt.Sprintf("user%d", id),
				DisplayName: "Glimpse 用户",
				AvatarURL:   consts.DefaultAvatarURL,
			}
		}
	}
	return result
}

func (s *profileProviderImpl) GetProfile(ctx context.Context, id uint64) *Profile {
	return s.GetProfiles(ctx, []uint64{id})[id]
}

func (s *profileProviderImpl) Invalidate(id uint64) {
	s.cache.Remove(id)
}
