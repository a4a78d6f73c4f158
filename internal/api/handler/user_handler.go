package handler

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/pkg/response"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/service"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
	}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	err := c.ShouldBind(&registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.userSvc.Register(c.Request.Context(), &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.CredentialDTO
	err := c.ShouldBind(&loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !util.ValidateLoginDTO(&loginDTO) {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	result, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *UserHandler) Logout(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	token = strings.Replace(token, "Bearer ", "", 1)
	sessionID := c.GetString("session_id")
	err := s.userSvc.Logout(c.Request.Context(), token, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *UserHandler) GetMyProfile(c *gin.Context) {
	userID := c.GetUint64("user_id")
	userDTO, err := s.userSvc.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userDTO)
}

func (s *UserHandler) GetProfile(c *gin.Context) {
	viewerID := c.GetUint64("user_id")
	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return
	}
	userDTO, err := s.userSvc.GetProfile(c.Request.Context(), viewerID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userDTO)
}

func (s *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetUint64("user_id")
	var updateDTO dto.UpdateProfileDTO
	err := c.ShouldBind(&updateDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = util.ValidateDTO(&updateDTO); err != nil {
		response.Error(c, err)
		return
	}
	userDTO, err := s.userSvc.UpdateProfile(c.Request.Context(), userID, &updateDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, userDTO)
}
