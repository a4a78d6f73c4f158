package util

import (
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"io"
	"net/http"
	"sort"
)

// GetSafeContentType 按文件头嗅探真实类型，不信任客户端声明的 Content-Type
func GetSafeContentType(reader io.ReadSeeker) (string, error) {
	buf := make([]byte, 512)
	n, err := reader.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err = reader.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// NormalizeMedia 把新旧两种媒体存储归一成有序列表
// 新数据走 post_media 表，按 sort_order 排；旧数据只有单图或单视频字段
func NormalizeMedia(post *model.Post) []model.MediaItem {
	if len(post.Media) > 0 {
		media := make([]model.PostMedia, len(post.Media))
		copy(media, post.Media)
		sort.SliceStable(media, func(i, j int) bool {
			return media[i].SortOrder < media[j].SortOrder
		})

		items := make([]model.MediaItem, 0, len(media))
		for _, m := range media {
			items = append(items, model.MediaItem{
				Type: m.MediaType,
				URL:  m.MediaURL,
			})
		}
		return items
	}

	items := make([]model.MediaItem, 0, 2)
	if post.ImageURL != nil && *post.ImageURL != "" {
		items = append(items, model.MediaItem{
			Type: consts.MediaTypeImage,
			URL:  *post.ImageURL,
		})
	}
	if post.VideoURL != nil && *post.VideoURL != "" {
		items = append(items, model.MediaItem{
			Type: consts.MediaTypeVideo,
			URL:  *post.VideoURL,
		})
	}
	return items
}
