package api

import "Glimpse/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler         *handler.UserHandler
	FeedHandler         *handler.FeedHandler
	PostHandler         *handler.PostHandler
	PostActionHandler   *handler.PostActionHandler
	FollowHandler       *handler.FollowHandler
	NotificationHandler *handler.NotificationHandler
	ExploreHandler      *handler.ExploreHandler
	MediaHandler        *handler.MediaHandler
	WSHandler           *handler.WsHandler
}
