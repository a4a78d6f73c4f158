package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/es"
	"context"
	log "log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

type ExploreService interface {
	// Search 帖子和用户并行检索
	Search(ctx context.Context, req *dto.ExploreSearchReq) (*dto.ExploreResultDTO, error)
	GetLatest(ctx context.Context, page, pageSize int) ([]*dto.PostDTO, error)
}

type exploreServiceImpl struct {
	esPostRepo es.PostRepo
	esUserRepo es.UserRepo
}

func NewExploreService(esPostRepo es.PostRepo, esUserRepo es.UserRepo) ExploreService {
	return &exploreServiceImpl{
		esPostRepo: esPostRepo,
		esUserRepo: esUserRepo,
	}
}

func (s *exploreServiceImpl) Search(ctx context.Context, req *dto.ExploreSearchReq) (*dto.ExploreResultDTO, error) {
	from := (req.Page - 1) * req.Size

	var (
		posts []*es.PostES
		users []*es.UserES
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.esPostRepo.SearchPosts(gctx, req.Keyword, from, req.Size)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = s.esUserRepo.SearchUsers(gctx, req.Keyword, from, req.Size)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "EXPLORE_SEARCH",
		"keyword", req.Keyword, "posts", len(posts), "users", len(users))

	return &dto.ExploreResultDTO{
		Posts: s.toPostDTOs(posts),
		Users: s.toUserDTOs(users),
	}, nil
}

func (s *exploreServiceImpl) GetLatest(ctx context.Context, page, pageSize int) ([]*dto.PostDTO, error) {
	posts, err := s.esPostRepo.GetLatestPosts(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	return s.toPostDTOs(posts), nil
}

func (s *exploreServiceImpl) toPostDTOs(posts []*es.PostES) []*dto.PostDTO {
	res := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		d := &dto.PostDTO{
			ID:            p.ID,
			UserID:        p.UserID,
			Username:      p.Username,
			DisplayName:   p.DisplayName,
			AvatarURL:     p.AvatarURL,
			Caption:       p.Caption,
			LikesCount:    p.LikesCount,
			CommentsCount: p.CommentsCount,
			CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:     p.UpdatedAt.UTC().Format(time.RFC3339),
		}
		d.Media = make([]dto.MediaItemDTO, 0, len(p.Media))
		for _, m := range p.Media {
			d.Media = append(d.Media, dto.MediaItemDTO{Type: m.Type, URL: m.URL})
		}
		res = append(res, d)
	}
	return res
}

func (s *exploreServiceImpl) toUserDTOs(users []*es.UserES) []*dto.UserDTO {
	res := make([]*dto.UserDTO, 0, len(users))
	for _, u := range users {
		res = append(res, &dto.UserDTO{
			UserID:         u.ID,
			Username:       u.Username,
			DisplayName:    u.DisplayName,
			AvatarURL:      u.AvatarURL,
			Bio:            u.Bio,
			Pronouns:       u.Pronouns,
			FollowersCount: u.FollowersCount,
			FollowingCount: u.FollowingCount,
		})
	}
	return res
}
