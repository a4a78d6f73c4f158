package handler

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/service"
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	followSvc service.FollowService
}

func NewFollowHandler(followSvc service.FollowService) *FollowHandler {
	return &FollowHandler{
		followSvc: followSvc,
	}
}

// Toggle 已关注则取关，未关注则关注
func (s *FollowHandler) Toggle(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.FollowToggleReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.followSvc.ToggleFollow(c.Request.Context(), userID, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *FollowHandler) IsFollowing(c *gin.Context) {
	userID := c.GetUint64("user_id")
	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	isFollowing, err := s.followSvc.IsFollowing(c.Request.Context(), userID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]bool{"is_following": isFollowing})
}

func (s *FollowHandler) GetFollowers(c *gin.Context) {
	s.getFollowList(c, s.followSvc.GetFollowers)
}

func (s *FollowHandler) GetFollowing(c *gin.Context) {
	s.getFollowList(c, s.followSvc.GetFollowing)
}

func (s *FollowHandler) GetFollowerCount(c *gin.Context) {
	s.getCount(c, s.followSvc.GetFollowerCount)
}

func (s *FollowHandler) GetFollowingCount(c *gin.Context) {
	s.getCount(c, s.followSvc.GetFollowingCount)
}

func (s *FollowHandler) getFollowList(c *gin.Context, fetch func(ctx context.Context, userID uint64, page, pageSize int) (*dto.FollowListDTO, error)) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	list, err := fetch(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *FollowHandler) getCount(c *gin.Context, fetch func(ctx context.Context, userID uint64) (int64, error)) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	count, err := fetch(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}
