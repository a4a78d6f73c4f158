package service

import (
	"Glimpse/internal/api/dto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeComment(id, parentID uint64) *dto.CommentDTO {
	return &dto.CommentDTO{ID: id, ParentID: parentID}
}

func entryIDs(entries []*dto.ThreadEntryDTO) []uint64 {
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if e.Comment != nil {
			ids = append(ids, e.Comment.ID)
		}
	}
	return ids
}

func TestBuildThread_TopLevelOrderPreserved(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(2, 0),
		makeComment(3, 0),
	}

	entries := BuildThread(comments, nil)

	assert.Equal(t, []uint64{1, 2, 3}, entryIDs(entries))
	for _, e := range entries {
		assert.Equal(t, dto.ThreadEntryComment, e.Kind)
	}
}

func TestBuildThread_RepliesFollowParent(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(2, 0),
		makeComment(10, 1),
		makeComment(11, 1),
	}

	entries := BuildThread(comments, nil)

	assert.Equal(t, []uint64{1, 10, 11, 2}, entryIDs(entries))
	// 不足折叠阈值时没有任何标记项
	assert.Len(t, entries, 4)
}

func TestBuildThread_CollapsesLongReplyChains(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(10, 1),
		makeComment(11, 1),
		makeComment(12, 1),
		makeComment(13, 1),
		makeComment(14, 1),
	}

	entries := BuildThread(comments, nil)

	// 一级评论 + 3 条预览 + view_more
	assert.Len(t, entries, 5)
	assert.Equal(t, []uint64{1, 10, 11, 12}, entryIDs(entries))

	marker := entries[4]
	assert.Equal(t, dto.ThreadEntryViewMore, marker.Kind)
	assert.Equal(t, uint64(1), marker.ParentID)
	assert.Equal(t, 2, marker.HiddenCount)
	assert.Nil(t, marker.Comment)
}

func TestBuildThread_ExpandedShowsAllWithViewLess(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(10, 1),
		makeComment(11, 1),
		makeComment(12, 1),
		makeComment(13, 1),
	}

	entries := BuildThread(comments, map[uint64]bool{1: true})

	assert.Equal(t, []uint64{1, 10, 11, 12, 13}, entryIDs(entries))
	marker := entries[len(entries)-1]
	assert.Equal(t, dto.ThreadEntryViewLess, marker.Kind)
	assert.Equal(t, uint64(1), marker.ParentID)
	assert.Zero(t, marker.HiddenCount)
}

func TestBuildThread_ExactlyCapRepliesHasNoMarker(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(10, 1),
		makeComment(11, 1),
		makeComment(12, 1),
	}

	entries := BuildThread(comments, nil)

	assert.Len(t, entries, 4)
	for _, e := range entries {
		assert.Equal(t, dto.ThreadEntryComment, e.Kind)
	}
}

func TestBuildThread_OrphanRepliesDropped(t *testing.T) {
	comments := []*dto.CommentDTO{
		makeComment(1, 0),
		makeComment(10, 99), // 一级评论已被删除
	}

	entries := BuildThread(comments, nil)

	assert.Equal(t, []uint64{1}, entryIDs(entries))
}

func TestBuildThread_Empty(t *testing.T) {
	assert.Empty(t, BuildThread(nil, nil))
}
