package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserBan                 = errors.New("用户已被封禁")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrSessionNotFound         = errors.New("会话不存在或已过期")
	ErrFileNotSupported        = errors.New("不支持的文件类型")
	ErrUserFollowSelf          = errors.New("用户不能关注自己")
	ErrFollowInFlight          = errors.New("关注操作进行中")
	ErrPostNotFound            = errors.New("帖子不存在")
	ErrCommentNotFound         = errors.New("评论不存在")
	ErrCommentDepthLimit       = errors.New("只支持两级评论")
	ErrActionDuplicate         = errors.New("重复操作")
	ErrVersionStale            = errors.New("数据已过期，请刷新")
	ErrNotOwner                = errors.New("只能操作自己的内容")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrUserNotFound:            NotFound,
	ErrUserBan:                 Unauthorized,
	ErrUserEmailExist:          BadRequest,
	ErrUserUsernameExist:       BadRequest,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrSessionNotFound:         Unauthorized,
	ErrFileNotSupported:        BadRequest,
	ErrUserFollowSelf:          BadRequest,
	ErrFollowInFlight:          Conflict,
	ErrPostNotFound:            NotFound,
	ErrCommentNotFound:         NotFound,
	ErrCommentDepthLimit:       BadRequest,
	ErrActionDuplicate:         BadRequest,
	ErrVersionStale:            Conflict,
	ErrNotOwner:                Unauthorized,
	UnauthorizedError:          Unauthorized,
	UnExpectedError:            InternalServerError,
}
