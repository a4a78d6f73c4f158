package handler

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/service"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type PostActionHandler struct {
	actionSvc service.PostActionService
}

func NewPostActionHandler(actionSvc service.PostActionService) *PostActionHandler {
	return &PostActionHandler{
		actionSvc: actionSvc,
	}
}

func (s *PostActionHandler) CreateComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.CommentCreateDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	comment, err := s.actionSvc.CreateComment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *PostActionHandler) DeleteComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	if err = s.actionSvc.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetThread 评论区平铺视图，expanded 参数为逗号分隔的一级评论 ID，表示展开其全部回复
func (s *PostActionHandler) GetThread(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}

	expanded := make(map[uint64]bool)
	if raw := c.Query("expanded"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
			if err != nil {
				response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
				return
			}
			expanded[id] = true
		}
	}

	thread, err := s.actionSvc.GetThread(c.Request.Context(), userID, postID, expanded)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, thread)
}

func (s *PostActionHandler) ReactToComment(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var req dto.CommentReactionReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.actionSvc.ReactToComment(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PostActionHandler) GetCommentCount(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	count, err := s.actionSvc.GetPostCommentCount(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}
