package service

import (
	"Glimpse/internal/api/config"
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	redispkg "Glimpse/internal/pkg/redis"
	"Glimpse/internal/session"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	config.Cfg = &config.Config{}
	// 指向不存在的实例，计数缓存写入失败会被容忍
	redispkg.Rdb = goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	m.Run()
}

// ---- 仓储打桩 ----

type fakePostRepo struct {
	getLatestWindow func(ctx context.Context, limit int) ([]*model.Post, error)
	getPost         func(ctx context.Context, id uint64) (*model.Post, error)
	getFirstLikers  func(ctx context.Context, postIDs []uint64) (map[uint64]uint64, error)
}

func (f *fakePostRepo) CreatePost(context.Context, *model.Post, []*model.PostMedia) error {
	return nil
}

func (f *fakePostRepo) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	if f.getPost != nil {
		return f.getPost(ctx, id)
	}
	return nil, nil
}

func (f *fakePostRepo) GetPostByIds(context.Context, []uint64) ([]*model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) GetLatestWindow(ctx context.Context, limit int) ([]*model.Post, error) {
	if f.getLatestWindow != nil {
		return f.getLatestWindow(ctx, limit)
	}
	return nil, nil
}

func (f *fakePostRepo) GetPostsByUserID(context.Context, uint64, int, int) ([]*model.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) UpdateCaption(context.Context, uint64, string) error { return nil }

func (f *fakePostRepo) UpdatePostCounts(context.Context, uint64, int64, int64) error { return nil }

func (f *fakePostRepo) DeletePost(context.Context, uint64) error { return nil }

func (f *fakePostRepo) GetFirstLikers(ctx context.Context, postIDs []uint64) (map[uint64]uint64, error) {
	if f.getFirstLikers != nil {
		return f.getFirstLikers(ctx, postIDs)
	}
	return map[uint64]uint64{}, nil
}

type fakeActionRepo struct {
	createLike        func(ctx context.Context, like *model.Like) error
	deleteLike        func(ctx context.Context, userID, postID uint64) (int64, error)
	getLikedPostIDs   func(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error)
	getCommentByID    func(ctx context.Context, id uint64) (*model.Comment, error)
	replaceReaction   func(ctx context.Context, reaction *model.CommentReaction) error
	deleteReaction    func(ctx context.Context, userID, commentID uint64) error
	getReactionCounts func(ctx context.Context, commentID uint64) (int64, int64, error)
}

func (f *fakeActionRepo) CreateLike(ctx context.Context, like *model.Like) error {
	if f.createLike != nil {
		return f.createLike(ctx, like)
	}
	return nil
}

func (f *fakeActionRepo) DeleteLike(ctx context.Context, userID, postID uint64) (int64, error) {
	if f.deleteLike != nil {
		return f.deleteLike(ctx, userID, postID)
	}
	return 1, nil
}

func (f *fakeActionRepo) CheckLikeExists(context.Context, uint64, uint64) (bool, error) {
	return false, nil
}

func (f *fakeActionRepo) GetLikedPostIDs(ctx context.Context, userID uint64, postIDs []uint64) ([]uint64, error) {
	if f.getLikedPostIDs != nil {
		return f.getLikedPostIDs(ctx, userID, postIDs)
	}
	return nil, nil
}

func (f *fakeActionRepo) GetLikeCountByPostID(context.Context, uint64) (int64, error) {
	return 0, nil
}

func (f *fakeActionRepo) CreateComment(context.Context, *model.Comment) error { return nil }

func (f *fakeActionRepo) DeleteComment(context.Context, uint64) error { return nil }

func (f *fakeActionRepo) GetCommentByID(ctx context.Context, id uint64) (*model.Comment, error) {
	if f.getCommentByID != nil {
		return f.getCommentByID(ctx, id)
	}
	return nil, nil
}

func (f *fakeActionRepo) GetCommentsByPostID(context.Context, uint64) ([]*model.Comment, error) {
	return nil, nil
}

func (f *fakeActionRepo) GetCommentCountByPostID(context.Context, uint64) (int64, error) {
	return 0, nil
}

func (f *fakeActionRepo) ReplaceReaction(ctx context.Context, reaction *model.CommentReaction) error {
	if f.replaceReaction != nil {
		return f.replaceReaction(ctx, reaction)
	}
	return nil
}

func (f *fakeActionRepo) DeleteReaction(ctx context.Context, userID, commentID uint64) error {
	if f.deleteReaction != nil {
		return f.deleteReaction(ctx, userID, commentID)
	}
	return nil
}

func (f *fakeActionRepo) GetReaction(context.Context, uint64, uint64) (*model.CommentReaction, error) {
	return nil, nil
}

func (f *fakeActionRepo) GetReactionsByUser(context.Context, uint64, []uint64) (map[uint64]string, error) {
	return nil, nil
}

func (f *fakeActionRepo) GetReactionCounts(ctx context.Context, commentID uint64) (int64, int64, error) {
	if f.getReactionCounts != nil {
		return f.getReactionCounts(ctx, commentID)
	}
	return 0, 0, nil
}

func (f *fakeActionRepo) UpdateCommentReactionCounts(context.Context, uint64, int64, int64) error {
	return nil
}

type fakeFollowRepo struct {
	followingIDs []uint64
}

func (f *fakeFollowRepo) GetFollowers(context.Context, uint64, int, int) ([]*model.Follow, error) {
	return nil, nil
}

func (f *fakeFollowRepo) GetFollowing(context.Context, uint64, int, int) ([]*model.Follow, error) {
	return nil, nil
}

func (f *fakeFollowRepo) GetFollowingIDs(context.Context, uint64) ([]uint64, error) {
	return f.followingIDs, nil
}

func (f *fakeFollowRepo) GetFollowerCount(context.Context, uint64) (int64, error) { return 0, nil }

func (f *fakeFollowRepo) GetFollowingCount(context.Context, uint64) (int64, error) { return 0, nil }

func (f *fakeFollowRepo) GetFollow(context.Context, uint64, uint64) (*model.Follow, error) {
	return nil, nil
}

func (f *fakeFollowRepo) CreateFollow(context.Context, *model.Follow) error { return nil }

func (f *fakeFollowRepo) DeleteFollow(context.Context, *model.Follow) error { return nil }

type fakeProfiles struct{}

func (f *fakeProfiles) GetProfiles(ctx context.Context, ids []uint64) map[uint64]*Profile {
	result := make(map[uint64]*Profile, len(ids))
	for _, id := range ids {
		result[id] = f.GetProfile(ctx, id)
	}
	return result
}

func (f *fakeProfiles) GetProfile(_ context.Context, id uint64) *Profile {
	digit := string(rune('0' + id%10))
	return &Profile{UserID: id, Username: "user" + digit, DisplayName: "User-" + digit}
}

func (f *fakeProfiles) Invalidate(uint64) {}

type fakeNotifier struct {
	created []string
	removed []string
}

func (f *fakeNotifier) CreateNotificationSafe(_ context.Context, _, _ uint64, notifType string, _ uint64, _ string) error {
	f.created = append(f.created, notifType)
	return nil
}

func (f *fakeNotifier) RemoveNotification(_ context.Context, _, _ uint64, notifType string, _ uint64) {
	f.removed = append(f.removed, notifType)
}

func (f *fakeNotifier) GetNotificationList(context.Context, uint64, int, int) (*dto.NotificationListDTO, error) {
	return nil, nil
}

func (f *fakeNotifier) GetUnreadCount(context.Context, uint64) (*dto.UnreadCountDTO, error) {
	return nil, nil
}

func (f *fakeNotifier) RefreshUnreadCount(context.Context, uint64) (int64, error) { return 0, nil }

// ---- 测试 ----

func makePost(id, userID uint64, likes, comments int, age time.Duration) *model.Post {
	return &model.Post{
		ID:            id,
		UserID:        userID,
		LikesCount:    likes,
		CommentsCount: comments,
		CreatedAt:     time.Now().Add(-age),
	}
}

func newTestFeedService(posts []*model.Post) (*feedServiceImpl, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := &feedServiceImpl{
		postRepo: &fakePostRepo{
			getLatestWindow: func(context.Context, int) ([]*model.Post, error) {
				return posts, nil
			},
			getPost: func(_ context.Context, id uint64) (*model.Post, error) {
				for _, p := range posts {
					if p.ID == id {
						return p, nil
					}
				}
				return nil, nil
			},
		},
		actionRepo:   &fakeActionRepo{},
		followRepo:   &fakeFollowRepo{},
		profiles:     &fakeProfiles{},
		notification: notifier,
	}
	return svc, notifier
}

func TestScorePost_WeightsAndBoosts(t *testing.T) {
	svc := &feedServiceImpl{}
	now := time.Now()
	following := map[uint64]struct{}{5: {}}

	fresh := makePost(1, 9, 10, 5, 0)
	score := svc.scorePost(fresh, 7, following, now)
	// 10 赞 + 5 评论*2 + 满额新鲜度
	assert.InDelta(t, 10+10+100, score, 0.01)

	followed := makePost(2, 5, 0, 0, 0)
	assert.InDelta(t, 100+50, svc.scorePost(followed, 7, following, now), 0.01)

	own := makePost(3, 7, 0, 0, 0)
	assert.InDelta(t, 100+30, svc.scorePost(own, 7, following, now), 0.01)
}

func TestScorePost_RecencyFloorsAtZero(t *testing.T) {
	svc := &feedServiceImpl{}
	now := time.Now()

	old := makePost(1, 9, 0, 0, 80*time.Hour)
	// 80 小时 * 2 远超 100，新鲜度只会归零不会为负
	assert.InDelta(t, 0, svc.scorePost(old, 7, nil, now), 0.01)
}

func TestLoadFeed_StableOrderWithinSession(t *testing.T) {
	posts := make([]*model.Post, 0, 20)
	for i := uint64(1); i <= 20; i++ {
		// 分数全部相同，顺序完全由会话种子的抖动决定
		posts = append(posts, makePost(i, 100+i, 0, 0, 200*time.Hour))
	}
	svc, _ := newTestFeedService(posts)
	mgr := session.NewManager()
	sess := mgr.Create(7)

	first, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	second, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	require.Len(t, first.Items, 20)
	for i := range first.Items {
		assert.Equal(t, first.Items[i].ID, second.Items[i].ID, "下拉刷新后顺序应保持稳定")
	}
}

func TestLoadFeed_KeepsLocalStateTouchedDuringFetch(t *testing.T) {
	posts := []*model.Post{makePost(1, 2, 0, 0, 0), makePost(2, 3, 0, 0, 0)}
	mgr := session.NewManager()
	sess := mgr.Create(7)

	svc, _ := newTestFeedService(posts)
	first, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)

	// 第二次拉取进行中时帖子 1 被本地点赞
	svc.postRepo = &fakePostRepo{
		getLatestWindow: func(context.Context, int) ([]*model.Post, error) {
			for _, item := range sess.Snapshot() {
				if item.ID == 1 {
					updated := *item
					updated.IsLiked = true
					updated.LikesCount++
					updated.FirstLiker = "User-7"
					updated.Version = sess.NextVersion()
					sess.UpdateItem(&updated)
				}
			}
			return posts, nil
		},
	}

	second, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	for _, item := range second.Items {
		if item.ID == 1 {
			assert.True(t, item.IsLiked, "拉取期间的本地点赞不能被这次结果覆盖")
			assert.Equal(t, 1, item.LikesCount)
			assert.Equal(t, "User-7", item.FirstLiker)
		} else {
			assert.False(t, item.IsLiked)
		}
	}
}

func TestLoadFeed_FallsBackToStaleSnapshot(t *testing.T) {
	posts := []*model.Post{makePost(1, 2, 0, 0, 0)}
	loadErr := error(nil)
	svc := &feedServiceImpl{
		postRepo: &fakePostRepo{
			getLatestWindow: func(context.Context, int) ([]*model.Post, error) {
				return posts, loadErr
			},
		},
		actionRepo:   &fakeActionRepo{},
		followRepo:   &fakeFollowRepo{},
		profiles:     &fakeProfiles{},
		notification: &fakeNotifier{},
	}
	mgr := session.NewManager()
	sess := mgr.Create(7)

	fresh, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	assert.False(t, fresh.Stale)

	loadErr = errors.New("db down")
	stale, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, stale.Stale)
	assert.Len(t, stale.Items, 1)

	// 没有任何快照可回退时错误直接上抛
	empty := mgr.Create(8)
	_, err = svc.LoadFeed(context.Background(), empty)
	assert.Error(t, err)
}

func TestToggleLike_OptimisticAndRemote(t *testing.T) {
	posts := []*model.Post{makePost(1, 99, 0, 0, 0)}
	svc, notifier := newTestFeedService(posts)
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	result, err := svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.Equal(t, 1, result.LikesCount)
	// 0 到 1 的切换把自己标成第一个点赞的人
	assert.Equal(t, "User-7", result.FirstLiker)
	assert.Equal(t, []string{"like"}, notifier.created)

	result, err = svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)
	assert.False(t, result.IsLiked)
	assert.Equal(t, 0, result.LikesCount)
	assert.Empty(t, result.FirstLiker)
	assert.Equal(t, []string{"like"}, notifier.removed)
}

type namedProfiles struct {
	profiles map[uint64]*Profile
}

func (f *namedProfiles) GetProfiles(ctx context.Context, ids []uint64) map[uint64]*Profile {
	result := make(map[uint64]*Profile, len(ids))
	for _, id := range ids {
		result[id] = f.GetProfile(ctx, id)
	}
	return result
}

func (f *namedProfiles) GetProfile(_ context.Context, id uint64) *Profile {
	if p, ok := f.profiles[id]; ok {
		return p
	}
	return &Profile{UserID: id, Username: "anon", DisplayName: "anon"}
}

func (f *namedProfiles) Invalidate(uint64) {}

func TestFirstLikerShowsDisplayName(t *testing.T) {
	posts := []*model.Post{makePost(1, 2, 0, 0, 0), makePost(2, 2, 1, 0, 0)}
	svc, _ := newTestFeedService(posts)
	svc.profiles = &namedProfiles{profiles: map[uint64]*Profile{
		7: {UserID: 7, Username: "alice123", DisplayName: "Alice Chen"},
	}}
	svc.postRepo.(*fakePostRepo).getFirstLikers = func(context.Context, []uint64) (map[uint64]uint64, error) {
		return map[uint64]uint64{2: 7}, nil
	}
	mgr := session.NewManager()
	sess := mgr.Create(7)

	feed, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	// 已有点赞的帖子展示最早点赞者的显示名而不是登录名
	for _, item := range feed.Items {
		if item.ID == 2 {
			assert.Equal(t, "Alice Chen", item.FirstLiker)
		}
	}

	result, err := svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Alice Chen", result.FirstLiker)
}

func TestToggleLike_RollbackOnRemoteFailure(t *testing.T) {
	posts := []*model.Post{makePost(1, 99, 3, 0, 0)}
	svc, notifier := newTestFeedService(posts)
	svc.actionRepo = &fakeActionRepo{
		createLike: func(context.Context, *model.Like) error {
			return errors.New("insert failed")
		},
	}
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)
	before := *sess.Snapshot()[0]

	_, err = svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.Error(t, err)

	after := *sess.Snapshot()[0]
	assert.Equal(t, before.IsLiked, after.IsLiked)
	assert.Equal(t, before.LikesCount, after.LikesCount)
	assert.Equal(t, before.FirstLiker, after.FirstLiker)
	assert.Equal(t, before.Version, after.Version)
	assert.Empty(t, notifier.created)
}

func TestToggleLike_DuplicateInsertConverges(t *testing.T) {
	posts := []*model.Post{makePost(1, 99, 0, 0, 0)}
	svc, notifier := newTestFeedService(posts)
	svc.actionRepo = &fakeActionRepo{
		createLike: func(context.Context, *model.Like) error {
			return &mysql.MySQLError{Number: 1062}
		},
	}
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	// 别的会话已经点过赞，本地收敛到已点赞状态而不报错
	result, err := svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)
	assert.True(t, result.IsLiked)
	assert.Empty(t, notifier.created)
}

func TestToggleLike_StaleVersionRejected(t *testing.T) {
	posts := []*model.Post{makePost(1, 99, 0, 0, 0)}
	svc, _ := newTestFeedService(posts)
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	_, err = svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)

	// 第一次切换后条目版本已前进，旧版本号要求先刷新
	_, err = svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1, Version: 1})
	assert.ErrorIs(t, err, ErrVersionStale)
}

func TestToggleLike_UnknownPost(t *testing.T) {
	svc, _ := newTestFeedService(nil)
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 42})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestToggleLike_NoSelfNotification(t *testing.T) {
	// 自己的帖子自己点赞，不给自己发通知
	posts := []*model.Post{makePost(1, 7, 0, 0, 0)}
	svc, notifier := newTestFeedService(posts)
	mgr := session.NewManager()
	sess := mgr.Create(7)

	_, err := svc.LoadFeed(context.Background(), sess)
	require.NoError(t, err)

	_, err = svc.ToggleLike(context.Background(), sess, &dto.LikeToggleReq{PostID: 1})
	require.NoError(t, err)
	assert.Empty(t, notifier.created)
}
