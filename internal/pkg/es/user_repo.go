package es

import (
	"context"
	"errors"
	log "log/slog"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

type UserRepo interface {
	SearchUsers(ctx context.Context, keyword string, from, size int) ([]*UserES, error)
	IndexUser(ctx context.Context, user *UserES, version int64) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewUserRepo(client *elasticsearch.TypedClient) UserRepo {
	return &UserRepoImpl{client: client}
}

func (s *UserRepoImpl) SearchUsers(ctx context.Context, keyword string, from, size int) ([]*UserES, error) {
	if from >= MaxSearchDepth {
		return []*UserES{}, nil
	}

	fuzziness := "AUTO"

	resp, err := s.client.Search().Index(UserIndex).
		Query(&types.Query{
			MultiMatch: &types.MultiMatchQuery{
				Query:     keyword,
				Fields:    []string{"username^3", "display_name^2", "bio"},
				Fuzziness: fuzziness,
			},
		}).
		From(from).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*UserES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var user UserES
		if err = json.Unmarshal(hit.Source_, &user); err != nil {
			continue
		}
		results = append(results, &user)
	}
	return results, nil
}

func (s *UserRepoImpl) IndexUser(ctx context.Context, user *UserES, version int64) error {
	docID := strconv.FormatUint(user.ID, 10)

	_, err := s.client.Index(UserIndex).
		Id(docID).
		Document(user).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				log.Warn("Version conflict detected, skipping old data",
					"user_id", user.ID,
					"version", version)
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *UserRepoImpl) DeleteUser(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)
	_, err := s.client.Delete(UserIndex, docID).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				log.Warn("User already deleted or not found in ES", "id", id)
				return nil
			}
		}
		return err
	}
	return nil
}
