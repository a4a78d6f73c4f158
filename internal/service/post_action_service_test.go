package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reactionStore 模拟仓储层的互斥语义：每人每条评论只保留一条反应
type reactionStore struct {
	kinds map[uint64]string // userID -> kind
}

func newReactionTestService(comment *model.Comment, store *reactionStore) (*postActionServiceImpl, *fakeNotifier) {
	notifier := &fakeNotifier{}
	svc := &postActionServiceImpl{
		actionRepo: &fakeActionRepo{
			getCommentByID: func(_ context.Context, id uint64) (*model.Comment, error) {
				if comment != nil && comment.ID == id {
					return comment, nil
				}
				return nil, nil
			},
			replaceReaction: func(_ context.Context, r *model.CommentReaction) error {
				store.kinds[r.UserID] = r.Kind
				return nil
			},
			deleteReaction: func(_ context.Context, userID, _ uint64) error {
				delete(store.kinds, userID)
				return nil
			},
			getReactionCounts: func(context.Context, uint64) (int64, int64, error) {
				var likes, dislikes int64
				for _, kind := range store.kinds {
					if kind == "like" {
						likes++
					} else {
						dislikes++
					}
				}
				return likes, dislikes, nil
			},
		},
		postRepo:     &fakePostRepo{},
		profiles:     &fakeProfiles{},
		notification: notifier,
	}
	return svc, notifier
}

func TestReactToComment_MutuallyExclusive(t *testing.T) {
	comment := &model.Comment{ID: 10, PostID: 5, UserID: 2}
	store := &reactionStore{kinds: map[uint64]string{}}
	svc, notifier := newReactionTestService(comment, store)
	ctx := context.Background()

	// 先点赞
	result, err := svc.ReactToComment(ctx, 7, &dto.CommentReactionReq{CommentID: 10, Kind: "like", Action: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, result.LikesCount)
	assert.Equal(t, 0, result.DislikesCount)
	require.NotNil(t, result.MyReaction)
	assert.Equal(t, "like", *result.MyReaction)
	assert.Equal(t, []string{"comment_like"}, notifier.created)

	// 改为点踩，点赞被顶掉
	result, err = svc.ReactToComment(ctx, 7, &dto.CommentReactionReq{CommentID: 10, Kind: "dislike", Action: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, result.LikesCount)
	assert.Equal(t, 1, result.DislikesCount)
	assert.Equal(t, "dislike", *result.MyReaction)
	// 点踩不产生通知
	assert.Len(t, notifier.created, 1)

	// 取消
	result, err = svc.ReactToComment(ctx, 7, &dto.CommentReactionReq{CommentID: 10, Kind: "dislike", Action: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, result.DislikesCount)
	assert.Nil(t, result.MyReaction)
}

func TestReactToComment_NoSelfNotification(t *testing.T) {
	comment := &model.Comment{ID: 10, PostID: 5, UserID: 7}
	store := &reactionStore{kinds: map[uint64]string{}}
	svc, notifier := newReactionTestService(comment, store)

	_, err := svc.ReactToComment(context.Background(), 7, &dto.CommentReactionReq{CommentID: 10, Kind: "like", Action: 1})
	require.NoError(t, err)
	assert.Empty(t, notifier.created)
}

func TestReactToComment_CancelLikeRemovesNotification(t *testing.T) {
	comment := &model.Comment{ID: 10, PostID: 5, UserID: 2}
	store := &reactionStore{kinds: map[uint64]string{7: "like"}}
	svc, notifier := newReactionTestService(comment, store)

	_, err := svc.ReactToComment(context.Background(), 7, &dto.CommentReactionReq{CommentID: 10, Kind: "like", Action: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"comment_like"}, notifier.removed)
}

func TestReactToComment_UnknownComment(t *testing.T) {
	store := &reactionStore{kinds: map[uint64]string{}}
	svc, _ := newReactionTestService(nil, store)

	_, err := svc.ReactToComment(context.Background(), 7, &dto.CommentReactionReq{CommentID: 99, Kind: "like", Action: 1})
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
