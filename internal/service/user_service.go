package service

import (
	"Glimpse/internal/api/dto"
	"Glimpse/internal/model"
	"Glimpse/internal/pkg/consts"
	"Glimpse/internal/pkg/es"
	"Glimpse/internal/pkg/minio"
	"Glimpse/internal/pkg/redis"
	"Glimpse/internal/pkg/security"
	"Glimpse/internal/pkg/util"
	"Glimpse/internal/repository"
	"Glimpse/internal/session"
	"context"
	log "log/slog"
	"time"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.LoginResultDTO, error)
	Login(ctx context.Context, req *dto.CredentialDTO) (*dto.LoginResultDTO, error)
	// Logout 吊销 Token 并销毁会话及其快照
	Logout(ctx context.Context, token string, sessionID string) error
	GetProfile(ctx context.Context, viewerID, userID uint64) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error)
}

type userServiceImpl struct {
	userRepo   repository.UserRepo
	followRepo repository.FollowRepo
	esUserRepo es.UserRepo
	esPostRepo es.PostRepo
	profiles   ProfileProvider
	sessions   *session.Manager
}

func NewUserService(
	userRepo repository.UserRepo,
	followRepo repository.FollowRepo,
	esUserRepo es.UserRepo,
	esPostRepo es.PostRepo,
	profiles ProfileProvider,
	sessions *session.Manager,
) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		followRepo: followRepo,
		esUserRepo: esUserRepo,
		esPostRepo: esPostRepo,
		profiles:   profiles,
		sessions:   sessions,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.LoginResultDTO, error) {
	if !util.ValidateRegisterDTO(req) {
		return nil, ErrParamInvalid
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserUsernameExist
	}
	existing, err = s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserEmailExist
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    hashed,
		DisplayName: req.DisplayName,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		// 并发注册撞唯一索引
		if isDuplicateError(err) {
			return nil, ErrUserUsernameExist
		}
		return nil, err
	}

	s.indexUser(ctx, user)
	log.InfoContext(ctx, "USER_REGISTERED", "user_id", user.ID, "username", user.Username)

	return s.issueSession(user)
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.CredentialDTO) (*dto.LoginResultDTO, error) {
	if !util.ValidateLoginDTO(req) {
		return nil, ErrMissingLoginCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsBan {
		return nil, ErrUserBan
	}

	if err = security.CheckPasswordHash(req.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	log.InfoContext(ctx, "USER_LOGIN", "user_id", user.ID)
	return s.issueSession(user)
}

func (s *userServiceImpl) Logout(ctx context.Context, token string, sessionID string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}

	// 吊销名单保留到 Token 自然过期
	key := consts.TokenRevokedKey + signature
	if err = redis.SetWithExpiration(ctx, key, 1, security.JWTExpirationTime); err != nil {
		return err
	}

	s.sessions.Remove(sessionID)
	log.InfoContext(ctx, "USER_LOGOUT", "session_id", sessionID)
	return nil
}

func (s *userServiceImpl) GetProfile(ctx context.Context, viewerID, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	d := s.toUserDTO(user)
	if viewerID > 0 && viewerID != userID {
		follow, err := s.followRepo.GetFollow(ctx, viewerID, userID)
		if err == nil {
			d.IsFollowing = follow != nil
		}
	}
	return d, nil
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uint64, req *dto.UpdateProfileDTO) (*dto.UserDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	fields := make(map[string]interface{})
	if req.DisplayName != nil {
		fields["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Pronouns != nil {
		fields["pronouns"] = *req.Pronouns
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}
	if len(fields) == 0 {
		return nil, ErrParamInvalid
	}

	if err := s.userRepo.UpdateUser(ctx, userID, fields); err != nil {
		return nil, err
	}
	s.profiles.Invalidate(userID)

	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	s.indexUser(ctx, user)

	// 改名换头像要同步到已发帖子的搜索文档
	if req.DisplayName != nil || req.AvatarURL != nil {
		p := s.profiles.GetProfile(ctx, userID)
		if err = s.esPostRepo.UpdatePostUserDetail(ctx, userID, p.DisplayName, p.AvatarURL); err != nil {
			log.WarnContext(ctx, "ES_POST_USER_SYNC_FAILED", "user_id", userID, "err", err)
		}
	}

	return s.toUserDTO(user), nil
}

func (s *userServiceImpl) issueSession(user *model.User) (*dto.LoginResultDTO, error) {
	sess := s.sessions.Create(user.ID)

	token, err := security.GenerateToken(user.ID, sess.ID)
	if err != nil {
		s.sessions.Remove(sess.ID)
		return nil, err
	}

	return &dto.LoginResultDTO{
		Token:     token,
		SessionID: sess.ID,
		User:      s.toUserDTO(user),
	}, nil
}

func (s *userServiceImpl) toUserDTO(user *model.User) *dto.UserDTO {
	d := &dto.UserDTO{
		UserID:         user.ID,
		Username:       user.Username,
		DisplayName:    user.Username,
		AvatarURL:      consts.DefaultAvatarURL,
		Bio:            user.Bio,
		Pronouns:       user.Pronouns,
		PostsCount:     user.PostsCount,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
	}
	if user.DisplayName != nil && *user.DisplayName != "" {
		d.DisplayName = *user.DisplayName
	}
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		d.AvatarURL = minio.GetPublicURL(*user.AvatarURL)
	}
	createdAt := user.CreatedAt
	d.CreatedAt = &createdAt
	return d
}

// indexUser 尽力同步用户搜索文档，失败只记日志
func (s *userServiceImpl) indexUser(ctx context.Context, user *model.User) {
	doc := &es.UserES{
		ID:             user.ID,
		Username:       user.Username,
		Bio:            user.Bio,
		Pronouns:       user.Pronouns,
		DisplayName:    user.Username,
		AvatarURL:      consts.DefaultAvatarURL,
		FollowersCount: user.FollowersCount,
		FollowingCount: user.FollowingCount,
	}
	if user.DisplayName != nil && *user.DisplayName != "" {
		doc.DisplayName = *user.DisplayName
	}
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		doc.AvatarURL = minio.GetPublicURL(*user.AvatarURL)
	}

	if err := s.esUserRepo.IndexUser(ctx, doc, time.Now().UnixMilli()); err != nil {
		log.WarnContext(ctx, "ES_USER_INDEX_FAILED", "user_id", user.ID, "err", err)
	}
}
