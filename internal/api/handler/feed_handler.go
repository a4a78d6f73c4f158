package handler

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/service"
	"Glimpse/internal/session"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feedSvc  service.FeedService
	sessions *session.Manager
}

func NewFeedHandler(feedSvc service.FeedService, sessions *session.Manager) *FeedHandler {
	return &FeedHandler{
		feedSvc:  feedSvc,
		sessions: sessions,
	}
}

// GetFeed 拉取当前会话的信息流窗口
func (s *FeedHandler) GetFeed(c *gin.Context) {
	sess, ok := s.sessions.Get(c.GetString("session_id"))
	if !ok {
		response.Error(c, service.ErrSessionNotFound)
		return
	}

	feed, err := s.feedSvc.LoadFeed(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, feed)
}

func (s *FeedHandler) ToggleLike(c *gin.Context) {
	sess, ok := s.sessions.Get(c.GetString("session_id"))
	if !ok {
		response.Error(c, service.ErrSessionNotFound)
		return
	}

	var req dto.LikeToggleReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := s.feedSvc.ToggleLike(c.Request.Context(), sess, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
