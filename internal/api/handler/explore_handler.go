package handler

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ExploreHandler struct {
	exploreSvc service.ExploreService
}

func NewExploreHandler(exploreSvc service.ExploreService) *ExploreHandler {
	return &ExploreHandler{
		exploreSvc: exploreSvc,
	}
}

func (s *ExploreHandler) Search(c *gin.Context) {
	var req dto.ExploreSearchReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.exploreSvc.Search(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *ExploreHandler) GetLatest(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	posts, err := s.exploreSvc.GetLatest(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, posts)
}
