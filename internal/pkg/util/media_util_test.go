package util

import (
	"Glimpse/internal/model"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestNormalizeMedia_SortedMediaListWins(t *testing.T) {
	post := &model.Post{
		ImageURL: strPtr("legacy.jpg"),
		Media: []model.PostMedia{
			{MediaType: "video", MediaURL: "b.mp4", SortOrder: 1},
			{MediaType: "image", MediaURL: "a.jpg", SortOrder: 0},
		},
	}

	items := NormalizeMedia(post)

	require.Len(t, items, 2)
	assert.Equal(t, "a.jpg", items[0].URL)
	assert.Equal(t, "b.mp4", items[1].URL)
}

func TestNormalizeMedia_LegacyColumns(t *testing.T) {
	post := &model.Post{
		ImageURL: strPtr("cover.jpg"),
		VideoURL: strPtr("clip.mp4"),
	}

	items := NormalizeMedia(post)

	require.Len(t, items, 2)
	assert.Equal(t, "image", items[0].Type)
	assert.Equal(t, "cover.jpg", items[0].URL)
	assert.Equal(t, "video", items[1].Type)
	assert.Equal(t, "clip.mp4", items[1].URL)
}

func TestNormalizeMedia_EmptyLegacyIgnored(t *testing.T) {
	post := &model.Post{ImageURL: strPtr("")}
	assert.Empty(t, NormalizeMedia(post))
}

func TestGetSafeContentType_SniffsHeader(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	reader := bytes.NewReader(png)

	contentType, err := GetSafeContentType(reader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	// 嗅探后读取位置要回到开头
	pos, _ := reader.Seek(0, 1)
	assert.Zero(t, pos)
}
