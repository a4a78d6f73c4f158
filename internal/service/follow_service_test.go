package service

import (
	"Glimpse/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFollowRepoWithState struct {
	fakeFollowRepo
	follow  *model.Follow
	creates int
	deletes int
}

func (f *fakeFollowRepoWithState) GetFollow(context.Context, uint64, uint64) (*model.Follow, error) {
	return f.follow, nil
}

func (f *fakeFollowRepoWithState) CreateFollow(context.Context, *model.Follow) error {
	f.creates++
	return nil
}

func (f *fakeFollowRepoWithState) DeleteFollow(context.Context, *model.Follow) error {
	f.deletes++
	return nil
}

func newTestFollowService(users map[uint64]*model.User) *followServiceImpl {
	locks := map[string]bool{}
	return &followServiceImpl{
		followRepo:   &fakeFollowRepo{},
		userRepo:     &fakeUserRepo{users: users},
		profiles:     &fakeProfiles{},
		notification: &fakeNotifier{},
		tryLock: func(_ context.Context, key string) (bool, error) {
			if locks[key] {
				return false, nil
			}
			locks[key] = true
			return true, nil
		},
		unLock: func(_ context.Context, key string) {
			delete(locks, key)
		},
	}
}

func TestToggleFollow_SelfRejected(t *testing.T) {
	svc := newTestFollowService(nil)

	_, err := svc.ToggleFollow(context.Background(), 7, 7)
	assert.ErrorIs(t, err, ErrUserFollowSelf)
}

func TestToggleFollow_TargetMissing(t *testing.T) {
	svc := newTestFollowService(map[uint64]*model.User{})

	_, err := svc.ToggleFollow(context.Background(), 7, 9)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggleFollow_SecondToggleWhileInFlightIsRejected(t *testing.T) {
	svc := newTestFollowService(map[uint64]*model.User{
		9: {ID: 9, Username: "bob"},
	})
	repo := &fakeFollowRepoWithState{}

	// 第一次切换写库尚未返回时又触发一次，后到的要被直接拒绝且不产生第二次写
	var inFlightErr error
	createCalls := 0
	svc.followRepo = &reentrantFollowRepo{
		inner: repo,
		onCreate: func(ctx context.Context) {
			createCalls++
			if createCalls == 1 {
				_, inFlightErr = svc.ToggleFollow(ctx, 7, 9)
			}
		},
	}

	result, err := svc.ToggleFollow(context.Background(), 7, 9)
	require.NoError(t, err)
	assert.True(t, result.IsFollowing)

	assert.ErrorIs(t, inFlightErr, ErrFollowInFlight)
	assert.Equal(t, 1, createCalls)
	assert.Equal(t, 0, repo.deletes)
}

// reentrantFollowRepo 在写库时回调，模拟写入尚未完成的窗口期
type reentrantFollowRepo struct {
	inner    *fakeFollowRepoWithState
	onCreate func(ctx context.Context)
}

func (r *reentrantFollowRepo) GetFollow(ctx context.Context, followerID, targetID uint64) (*model.Follow, error) {
	return r.inner.GetFollow(ctx, followerID, targetID)
}

func (r *reentrantFollowRepo) CreateFollow(ctx context.Context, f *model.Follow) error {
	if r.onCreate != nil {
		r.onCreate(ctx)
	}
	return r.inner.CreateFollow(ctx, f)
}

func (r *reentrantFollowRepo) DeleteFollow(ctx context.Context, f *model.Follow) error {
	return r.inner.DeleteFollow(ctx, f)
}

func (r *reentrantFollowRepo) GetFollowers(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	return r.inner.GetFollowers(ctx, userID, limit, offset)
}

func (r *reentrantFollowRepo) GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	return r.inner.GetFollowing(ctx, userID, limit, offset)
}

func (r *reentrantFollowRepo) GetFollowingIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	return r.inner.GetFollowingIDs(ctx, userID)
}

func (r *reentrantFollowRepo) GetFollowerCount(ctx context.Context, userID uint64) (int64, error) {
	return r.inner.GetFollowerCount(ctx, userID)
}

func (r *reentrantFollowRepo) GetFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	return r.inner.GetFollowingCount(ctx, userID)
}

func TestIsFollowing(t *testing.T) {
	svc := newTestFollowService(nil)

	// 未登录的浏览者恒为未关注
	following, err := svc.IsFollowing(context.Background(), 0, 9)
	require.NoError(t, err)
	assert.False(t, following)

	following, err = svc.IsFollowing(context.Background(), 7, 9)
	require.NoError(t, err)
	assert.False(t, following)

	svc.followRepo = &fakeFollowRepoWithState{
		follow: &model.Follow{FollowerID: 7, FollowingID: 9},
	}
	following, err = svc.IsFollowing(context.Background(), 7, 9)
	require.NoError(t, err)
	assert.True(t, following)
}
