package job

import (
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/logger"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/repository"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// CounterSyncJob 将 Redis 中的脏计数回写 MySQL
type CounterSyncJob struct {
	postRepo   repository.PostRepo
	actionRepo repository.PostActionRepo
}

func NewCounterSyncJob(postRepo repository.PostRepo, actionRepo repository.PostActionRepo) *CounterSyncJob {
	return &CounterSyncJob{
		postRepo:   postRepo,
		actionRepo: actionRepo,
	}
}

func (s *CounterSyncJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	s.syncPostCounts(ctx)
	s.syncCommentReactionCounts(ctx)
}

func (s *CounterSyncJob) syncPostCounts(ctx context.Context) {
	postIDs, ok := drainDirtySet(ctx, consts.PostDirtyKey)
	if !ok {
		return
	}

	log.InfoContext(ctx, "POST_COUNT_SYNC_START", "count", len(postIDs))

	successCount := 0
	for _, pid := range postIDs {
		likes, err := s.actionRepo.GetLikeCountByPostID(ctx, pid)
		if err != nil {
			log.ErrorContext(ctx, "POST_LIKE_COUNT_QUERY_FAILED", "pid", pid, "err", err)
			continue
		}
		comments, err := s.actionRepo.GetCommentCountByPostID(ctx, pid)
		if err != nil {
			log.ErrorContext(ctx, "POST_COMMENT_COUNT_QUERY_FAILED", "pid", pid, "err", err)
			continue
		}

		if err = s.postRepo.UpdatePostCounts(ctx, pid, likes, comments); err != nil {
			log.ErrorContext(ctx, "POST_COUNT_SYNC_FAILED", "pid", pid, "err", err)
			continue
		}
		successCount++
	}

	log.InfoContext(ctx, "POST_COUNT_SYNC_DONE",
		"total_count", len(postIDs),
		"success_count", successCount)
}

func (s *CounterSyncJob) syncCommentReactionCounts(ctx context.Context) {
	commentIDs, ok := drainDirtySet(ctx, consts.CommentDirtyKey)
	if !ok {
		return
	}

	log.InfoContext(ctx, "COMMENT_REACTION_SYNC_START", "count", len(commentIDs))

	successCount := 0
	for _, cid := range commentIDs {
		likes, dislikes, err := s.actionRepo.GetReactionCounts(ctx, cid)
		if err != nil {
			log.ErrorContext(ctx, "COMMENT_REACTION_COUNT_QUERY_FAILED", "cid", cid, "err", err)
			continue
		}

		if err = s.actionRepo.UpdateCommentReactionCounts(ctx, cid, likes, dislikes); err != nil {
			log.ErrorContext(ctx, "COMMENT_REACTION_SYNC_FAILED", "cid", cid, "err", err)
			continue
		}
		successCount++
	}

	log.InfoContext(ctx, "COMMENT_REACTION_SYNC_DONE",
		"total_count", len(commentIDs),
		"success_count", successCount)
}

// drainDirtySet 原子地接管脏集合，避免与新写入竞争
func drainDirtySet(ctx context.Context, dirtyKey string) ([]uint64, bool) {
	processingKey := dirtyKey + ":processing"
	if err := redis.Rename(ctx, dirtyKey, processingKey); err != nil {
		// 脏集合为空时 Rename 返回错误，属正常情况
		return nil, false
	}

	members, err := redis.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "DIRTY_SET_READ_FAILED", "key", processingKey, "err", err)
		return nil, false
	}

	ids, err := util.StrSliceToUInt64Slice(members)
	if err != nil {
		log.ErrorContext(ctx, "DIRTY_SET_PARSE_FAILED", "key", processingKey, "err", err)
		return nil, false
	}

	if err = redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "DIRTY_SET_CLEANUP_FAILED", "key", processingKey, "err", err)
	}
	return ids, true
}
