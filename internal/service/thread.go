package service

import (
	"Glimpse/internal/api/dto"
)

// 折叠前每条一级评论最多展示的回复数
const repliesPreviewCap = 3

// BuildThread 把按时间升序的评论平铺成评论区条目
// 一级评论按时间升序，回复挂在各自的一级评论后面，超过上限折叠
// expanded 里列出的一级评论展开全部回复并跟一个收起项
func BuildThread(comments []*dto.CommentDTO, expanded map[uint64]bool) []*dto.ThreadEntryDTO {
	var topLevel []*dto.CommentDTO
	replies := make(map[uint64][]*dto.CommentDTO)

	for _, c := range comments {
		if c.ParentID == 0 {
			topLevel = append(topLevel, c)
		} else {
			replies[c.ParentID] = append(replies[c.ParentID], c)
		}
	}

	entries := make([]*dto.ThreadEntryDTO, 0, len(comments))
	for _, top := range topLevel {
		entries = append(entries, &dto.ThreadEntryDTO{
			Kind:    dto.ThreadEntryComment,
			Comment: top,
		})

		subs := replies[top.ID]
		if len(subs) == 0 {
			continue
		}

		isExpanded := expanded[top.ID]
		visible := subs
		if !isExpanded && len(subs) > repliesPreviewCap {
			visible = subs[:repliesPreviewCap]
		}

		for _, sub := range visible {
			entries = append(entries, &dto.ThreadEntryDTO{
				Kind:    dto.ThreadEntryComment,
				Comment: sub,
			})
		}

		if len(subs) > repliesPreviewCap {
			if isExpanded {
				entries = append(entries, &dto.ThreadEntryDTO{
					Kind:     dto.ThreadEntryViewLess,
					ParentID: top.ID,
				})
			} else {
				entries = append(entries, &dto.ThreadEntryDTO{
					Kind:        dto.ThreadEntryViewMore,
					ParentID:    top.ID,
					HiddenCount: len(subs) - repliesPreviewCap,
				})
			}
		}
	}
	// 找不到一级评论的孤儿回复直接丢弃
	return entries
}
