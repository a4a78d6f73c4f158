package service

import (
	"Glimpse/internal/api/config"
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/repository"
	"Glimpse/internal/session"
	"context"
	"errors"
	log "log/slog"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// 排序权重：评论比点赞值钱，新帖有衰减的新鲜度加成
const (
	likeWeight      = 1.0
	commentWeight   = 2.0
	recencyBase     = 100.0
	recencyDecay    = 2.0 // 每小时衰减
	followingBoost  = 50.0
	ownPostBoost    = 30.0
	defaultWindow   = 50
	defaultJitter   = 5.0
)

type FeedService interface {
	// LoadFeed 整窗加载并排序，结果存入会话快照；失败时回退上一张快照
	LoadFeed(ctx context.Context, sess *session.Session) (*dto.FeedDTO, error)
	// ToggleLike 乐观点赞切换，远端失败时恢复切换前的条目状态
	ToggleLike(ctx context.Context, sess *session.Session, req *dto.LikeToggleReq) (*dto.LikeResultDTO, error)
}

type feedServiceImpl struct {
	postRepo     repository.PostRepo
	actionRepo   repository.PostActionRepo
	followRepo   repository.FollowRepo
	profiles     ProfileProvider
	notification NotificationService
}

func NewFeedService(
	postRepo repository.PostRepo,
	actionRepo repository.PostActionRepo,
	followRepo repository.FollowRepo,
	profiles ProfileProvider,
	notification NotificationService,
) FeedService {
	return &feedServiceImpl{
		postRepo:     postRepo,
		actionRepo:   actionRepo,
		followRepo:   followRepo,
		profiles:     profiles,
		notification: notification,
	}
}

func (s *feedServiceImpl) LoadFeed(ctx context.Context, sess *session.Session) (*dto.FeedDTO, error) {
	items, err := s.buildFeed(ctx, sess)
	if err != nil {
		// 旧快照还在就先用旧的，别让页面开天窗
		if previous := sess.Snapshot(); previous != nil {
			log.WarnContext(ctx, "FEED_LOAD_FALLBACK", "session_id", sess.ID, "err", err)
			return &dto.FeedDTO{SessionID: sess.ID, Items: previous, Stale: true}, nil
		}
		return nil, err
	}

	sess.SetSnapshot(items)
	return &dto.FeedDTO{SessionID: sess.ID, Items: items}, nil
}

func (s *feedServiceImpl) buildFeed(ctx context.Context, sess *session.Session) ([]*dto.FeedItemDTO, error) {
	windowSize := config.Cfg.Feed.WindowSize
	if windowSize <= 0 {
		windowSize = defaultWindow
	}

	// 重拉开始时的版本水位，之后本地乐观更新过的条目不允许被这次结果覆盖
	startVersion := sess.Version()

	posts, err := s.postRepo.GetLatestWindow(ctx, windowSize)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []*dto.FeedItemDTO{}, nil
	}

	postIDs := make([]uint64, 0, len(posts))
	authorIDs := make([]uint64, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.UserID)
	}

	followingSet, err := s.getFollowingSet(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	likedIDs, err := s.actionRepo.GetLikedPostIDs(ctx, sess.UserID, postIDs)
	if err != nil {
		return nil, err
	}
	likedSet := make(map[uint64]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = struct{}{}
	}

	firstLikers, err := s.postRepo.GetFirstLikers(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	hydrateIDs := authorIDs
	for _, likerID := range firstLikers {
		hydrateIDs = append(hydrateIDs, likerID)
	}
	profiles := s.profiles.GetProfiles(ctx, hydrateIDs)

	type scored struct {
		item  *dto.FeedItemDTO
		score float64
	}

	// 同一会话固定种子，下拉刷新时顺序稳定
	rng := rand.New(rand.NewSource(sess.Seed))
	jitterRange := config.Cfg.Feed.JitterRange
	if jitterRange <= 0 {
		jitterRange = defaultJitter
	}

	now := time.Now()
	entries := make([]scored, 0, len(posts))
	for _, p := range posts {
		item := s.toFeedItem(ctx, p, profiles, likedSet, followingSet, firstLikers)
		item.Version = sess.NextVersion()

		jitter := (rng.Float64()*2 - 1) * jitterRange
		entries = append(entries, scored{
			item:  item,
			score: s.scorePost(p, sess.UserID, followingSet, now) + jitter,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	// 拉取期间被本地乐观更新过的条目保留本地状态，等下一轮重拉再收敛
	localItems := make(map[uint64]*dto.FeedItemDTO)
	for _, existing := range sess.Snapshot() {
		if existing.Version > startVersion {
			localItems[existing.ID] = existing
		}
	}

	items := make([]*dto.FeedItemDTO, 0, len(entries))
	for _, e := range entries {
		if local, ok := localItems[e.item.ID]; ok {
			items = append(items, local)
			continue
		}
		items = append(items, e.item)
	}
	return items, nil
}

// scorePost 参与度加新鲜度，关注的人和自己的帖子有固定加成
func (s *feedServiceImpl) scorePost(p *model.Post, userID uint64, followingSet map[uint64]struct{}, now time.Time) float64 {
	score := float64(p.LikesCount)*likeWeight + float64(p.CommentsCount)*commentWeight

	ageHours := now.Sub(p.CreatedAt).Hours()
	score += math.Max(0, recencyBase-ageHours*recencyDecay)

	if _, ok := followingSet[p.UserID]; ok {
		score += followingBoost
	}
	if p.UserID == userID {
		score += ownPostBoost
	}
	return score
}

func (s *feedServiceImpl) toFeedItem(
	ctx context.Context,
	p *model.Post,
	profiles map[uint64]*Profile,
	likedSet map[uint64]struct{},
	followingSet map[uint64]struct{},
	firstLikers map[uint64]uint64,
) *dto.FeedItemDTO {
	item := &dto.FeedItemDTO{
		ID:            p.ID,
		UserID:        p.UserID,
		Caption:       p.Caption,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}

	if author, ok := profiles[p.UserID]; ok {
		item.Username = author.Username
		item.DisplayName = author.DisplayName
		item.AvatarURL = author.AvatarURL
	}

	media := util.NormalizeMedia(p)
	item.Media = make([]dto.MediaItemDTO, 0, len(media))
	for _, m := range media {
		item.Media = append(item.Media, dto.MediaItemDTO{Type: m.Type, URL: m.URL})
	}

	_, item.IsLiked = likedSet[p.ID]
	_, item.IsFollowing = followingSet[p.UserID]

	if likerID, ok := firstLikers[p.ID]; ok {
		if liker, ok := profiles[likerID]; ok {
			item.FirstLiker = liker.DisplayName
		}
	}
	return item
}

func (s *feedServiceImpl) getFollowingSet(ctx context.Context, userID uint64) (map[uint64]struct{}, error) {
	ids, err := s.followRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (s *feedServiceImpl) ToggleLike(ctx context.Context, sess *session.Session, req *dto.LikeToggleReq) (*dto.LikeResultDTO, error) {
	item := s.findItem(sess, req.PostID)
	if item == nil {
		return nil, ErrPostNotFound
	}
	// 客户端拿着旧版本的条目操作，让它先刷新
	if req.Version > 0 && req.Version < item.Version {
		return nil, ErrVersionStale
	}

	post, err := s.postRepo.GetPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	me := s.profiles.GetProfile(ctx, sess.UserID)

	var before dto.FeedItemDTO
	liking := !item.IsLiked

	cmd := &Command{
		Name: "toggle_like",
		Capture: func() {
			before = *item
		},
		Apply: func() {
			updated := *item
			updated.IsLiked = liking
			if liking {
				updated.LikesCount++
				if before.LikesCount == 0 {
					updated.FirstLiker = me.DisplayName
				}
			} else {
				if updated.LikesCount > 0 {
					updated.LikesCount--
				}
				if updated.LikesCount == 0 {
					updated.FirstLiker = ""
				}
			}
			updated.Version = sess.NextVersion()
			*item = updated
			sess.UpdateItem(item)
		},
		Remote: func(ctx context.Context) error {
			if liking {
				return s.likeRemote(ctx, sess.UserID, post)
			}
			return s.unlikeRemote(ctx, sess.UserID, post)
		},
		Revert: func() {
			*item = before
			sess.UpdateItem(item)
		},
	}

	if err = RunOptimistic(ctx, cmd); err != nil {
		return nil, err
	}

	return &dto.LikeResultDTO{
		PostID:     item.ID,
		IsLiked:    item.IsLiked,
		LikesCount: item.LikesCount,
		FirstLiker: item.FirstLiker,
		Version:    item.Version,
	}, nil
}

func (s *feedServiceImpl) likeRemote(ctx context.Context, userID uint64, post *model.Post) error {
	err := s.actionRepo.CreateLike(ctx, &model.Like{UserID: userID, PostID: post.ID, CreatedAt: time.Now()})
	if err != nil {
		// 别的会话已经点过了，收敛到已点赞状态
		if isDuplicateError(err) {
			return nil
		}
		return err
	}

	s.markLikeDirty(ctx, post.ID, 1)

	// 只有真正插入成功才发通知，且不通知自己
	if post.UserID != userID {
		if err = s.notification.CreateNotificationSafe(
			ctx, post.UserID, userID, consts.NotificationTypeLike, post.ID, "赞了你的帖子"); err != nil {
			log.WarnContext(ctx, "LIKE_NOTIFICATION_FAILED", "post_id", post.ID, "err", err)
		}
	}
	return nil
}

func (s *feedServiceImpl) unlikeRemote(ctx context.Context, userID uint64, post *model.Post) error {
	affected, err := s.actionRepo.DeleteLike(ctx, userID, post.ID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	s.markLikeDirty(ctx, post.ID, -1)
	s.notification.RemoveNotification(ctx, post.UserID, userID, consts.NotificationTypeLike, post.ID)
	return nil
}

// markLikeDirty 维护 Redis 计数并登记脏帖子，定时任务批量回写 MySQL
func (s *feedServiceImpl) markLikeDirty(ctx context.Context, postID uint64, delta int) {
	key := consts.PostLikeKey + strconv.FormatUint(postID, 10)
	var err error
	if delta > 0 {
		err = redis.Incr(ctx, key)
	} else {
		err = redis.Decr(ctx, key)
	}
	if err != nil {
		log.WarnContext(ctx, "LIKE_COUNT_CACHE_FAILED", "post_id", postID, "err", err)
		return
	}
	_ = redis.SAdd(ctx, consts.PostDirtyKey, postID)
}

func (s *feedServiceImpl) findItem(sess *session.Session, postID uint64) *dto.FeedItemDTO {
	for _, item := range sess.Snapshot() {
		if item.ID == postID {
			return item
		}
	}
	return nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}
