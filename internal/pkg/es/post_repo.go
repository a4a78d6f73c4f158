package es

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/conflicts"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/versiontype"
	"github.com/goccy/go-json"
)

const MaxSearchDepth = 400

type PostRepo interface {
	SearchPosts(ctx context.Context, keyword string, from, size int) ([]*PostES, error)
	GetLatestPosts(ctx context.Context, from, size int) ([]*PostES, error)
	IndexPost(ctx context.Context, post *PostES, version int64) error
	DeletePost(ctx context.Context, id uint64) error
	UpdatePostUserDetail(ctx context.Context, userID uint64, newDisplayName string, newAvatar string) error
}

type PostRepoImpl struct {
	client *elasticsearch.TypedClient
}

func NewPostRepo(client *elasticsearch.TypedClient) PostRepo {
	return &PostRepoImpl{client: client}
}

func (s *PostRepoImpl) SearchPosts(ctx context.Context, keyword string, from, size int) ([]*PostES, error) {
	if from >= MaxSearchDepth {
		return []*PostES{}, nil
	}

	fuzziness := "AUTO"
	boostExact := float32(2.0)
	boostFuzzy := float32(0.5)

	query := &types.Query{
		Bool: &types.BoolQuery{
			Should: []types.Query{
				{
					MultiMatch: &types.MultiMatchQuery{
						Query:  keyword,
						Fields: []string{"caption^3", "username^2", "display_name^2"},
						Boost:  &boostExact,
					},
				},
				{
					MultiMatch: &types.MultiMatchQuery{
						Query:     keyword,
						Fields:    []string{"caption", "display_name"},
						Fuzziness: fuzziness,
						Boost:     &boostFuzzy,
					},
				},
			},
		},
	}

	req := s.client.Search().Index(PostIndex).
		Query(query).
		From(from).
		Size(size)

	return s.executeSearch(ctx, req)
}

func (s *PostRepoImpl) GetLatestPosts(ctx context.Context, from, size int) ([]*PostES, error) {
	searchReq := s.client.Search().
		Index(PostIndex).
		Query(&types.Query{
			MatchAll: &types.MatchAllQuery{},
		}).
		Sort(types.SortOptions{SortOptions: map[string]types.FieldSort{
			"created_at": {Order: &sortorder.Desc},
		}}).
		From(from).
		Size(size)

	return s.executeSearch(ctx, searchReq)
}

func (s *PostRepoImpl) IndexPost(ctx context.Context, post *PostES, version int64) error {
	docID := strconv.FormatUint(post.ID, 10)

	_, err := s.client.Index(PostIndex).
		Id(docID).
		Document(post).
		Version(strconv.FormatInt(version, 10)).
		VersionType(versiontype.External).
		Do(ctx)

	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == ConflictCode {
				return nil
			}
		}
		return err
	}

	return nil
}

func (s *PostRepoImpl) DeletePost(ctx context.Context, id uint64) error {
	docID := strconv.FormatUint(id, 10)
	_, err := s.client.Delete(PostIndex, docID).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				return nil
			}
		}
		return err
	}
	return nil
}

// UpdatePostUserDetail 用户改名或换头像后刷新其全部帖子文档
func (s *PostRepoImpl) UpdatePostUserDetail(ctx context.Context, userID uint64, newDisplayName string, newAvatar string) error {
	nameJSON, _ := json.Marshal(newDisplayName)
	avatarJSON, _ := json.Marshal(newAvatar)

	params := map[string]json.RawMessage{
		"new_display_name": json.RawMessage(nameJSON),
		"new_avatar":       json.RawMessage(avatarJSON),
	}

	scriptSource := "ctx._source.display_name = params.new_display_name; ctx._source.avatar_url = params.new_avatar;"

	req := s.client.UpdateByQuery(PostIndex).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"user_id": {Value: userID},
			},
		}).
		Script(&types.Script{
			Source: &scriptSource,
			Params: params,
		}).
		Conflicts(conflicts.Proceed)

	resp, err := req.Do(ctx)
	if err != nil {
		return errors.New(fmt.Sprintf("Post Index: Update User Detail Failed: %s", err.Error()))
	}

	if len(resp.Failures) != 0 {
		return errors.New(fmt.Sprintf("Post Index: Update User Detail Has Failures, count: %d", len(resp.Failures)))
	}

	return nil
}

func (s *PostRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]*PostES, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*PostES, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var post PostES
		if err = json.Unmarshal(hit.Source_, &post); err != nil {
			continue
		}
		results = append(results, &post)
	}
	return results, nil
}
