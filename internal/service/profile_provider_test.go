package service

import (
	"Glimpse/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users     map[uint64]*model.User
	idsCalls  int
	idsQueued [][]uint64
}

func (f *fakeUserRepo) GetUserById(_ context.Context, id uint64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByIds(_ context.Context, ids []uint64) ([]*model.User, error) {
	f.idsCalls++
	f.idsQueued = append(f.idsQueued, ids)
	var result []*model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func (f *fakeUserRepo) GetUserByUsername(context.Context, string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) CreateUser(context.Context, *model.User) error { return nil }

func (f *fakeUserRepo) UpdateUser(context.Context, uint64, map[string]interface{}) error {
	return nil
}

func (f *fakeUserRepo) UpdateUserFollowCount(context.Context, uint64, int64, int64) error {
	return nil
}

func (f *fakeUserRepo) UpdateUserPostsCount(context.Context, uint64, int) error { return nil }

func displayName(s string) *string { return &s }

func TestProfileProvider_HydratesAndCaches(t *testing.T) {
	repo := &fakeUserRepo{users: map[uint64]*model.User{
		1: {ID: 1, Username: "ada", DisplayName: displayName("Ada L")},
		2: {ID: 2, Username: "bob"},
	}}
	provider := NewProfileProvider(repo)

	profiles := provider.GetProfiles(context.Background(), []uint64{1, 2})
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ada L", profiles[1].DisplayName)
	// 没填展示名时回落到用户名
	assert.Equal(t, "bob", profiles[2].DisplayName)
	assert.Equal(t, 1, repo.idsCalls)

	// 第二次取全部命中 LRU，不再查库
	provider.GetProfiles(context.Background(), []uint64{1, 2})
	assert.Equal(t, 1, repo.idsCalls)
}

func TestProfileProvider_InvalidateForcesReload(t *testing.T) {
	repo := &fakeUserRepo{users: map[uint64]*model.User{
		1: {ID: 1, Username: "ada"},
	}}
	provider := NewProfileProvider(repo)

	_ = provider.GetProfile(context.Background(), 1)
	provider.Invalidate(1)
	_ = provider.GetProfile(context.Background(), 1)

	assert.Equal(t, 2, repo.idsCalls)
}

func TestProfileProvider_MissingRowsSynthesizedNotCached(t *testing.T) {
	repo := &fakeUserRepo{users: map[uint64]*model.User{}}
	provider := NewProfileProvider(repo)

	p := provider.GetProfile(context.Background(), 42)
	require.NotNil(t, p)
	assert.Equal(t, "user42", p.Username)

	// 占位资料不进缓存，下次还会尝试查库
	_ = provider.GetProfile(context.Background(), 42)
	assert.Equal(t, 2, repo.idsCalls)
}

func TestProfileProvider_ZeroIDSkipped(t *testing.T) {
	repo := &fakeUserRepo{users: map[uint64]*model.User{}}
	provider := NewProfileProvider(repo)

	profiles := provider.GetProfiles(context.Background(), []uint64{0})
	assert.Empty(t, profiles)
	assert.Zero(t, repo.idsCalls)
}
