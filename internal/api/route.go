package api

import (
	"Glimpse/internal/api/middleware"
	"Glimpse/internal/pkg/logger"
	"Glimpse/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, sessions *session.Manager) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	auth := middleware.AuthMiddleware(sessions)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/profile", group.UserHandler.GetMyProfile)
				authGroup.PUT("/profile", group.UserHandler.UpdateProfile)
				authGroup.GET("/:user_id/profile", group.UserHandler.GetProfile)
			}
		}

		feedGroup := apiGroup.Group("/feed")
		feedGroup.Use(auth)
		{
			feedGroup.GET("", group.FeedHandler.GetFeed)
			feedGroup.POST("/like", group.FeedHandler.ToggleLike)
		}

		postGroup := apiGroup.Group("/posts")
		{
			authOptGroup := postGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("/detail/:post_id", group.PostHandler.GetPost)
				authOptGroup.GET("/list/:user_id", group.PostHandler.GetUserPosts)
			}

			authGroup := postGroup.Group("")
			authGroup.Use(auth)
			{
				authGroup.POST("", group.PostHandler.CreatePost)
				authGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				authGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
			}
		}

		postActionGroup := apiGroup.Group("/post/action")
		{
			actionOptGroup := postActionGroup.Group("")
			actionOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				actionOptGroup.GET("/thread/:post_id", group.PostActionHandler.GetThread)
				actionOptGroup.GET("/comments/:post_id/count", group.PostActionHandler.GetCommentCount)
			}

			authActionGroup := postActionGroup.Group("")
			authActionGroup.Use(auth)
			{
				authActionGroup.POST("/comments", group.PostActionHandler.CreateComment)
				authActionGroup.DELETE("/comments/:comment_id", group.PostActionHandler.DeleteComment)
				authActionGroup.POST("/comments/react", group.PostActionHandler.ReactToComment)
			}
		}

		followGroup := apiGroup.Group("/follows")
		followGroup.Use(auth)
		{
			followGroup.POST("/toggle", group.FollowHandler.Toggle)
			followGroup.GET("/isfollow/:user_id", group.FollowHandler.IsFollowing)
			followGroup.GET("/:user_id/followers", group.FollowHandler.GetFollowers)
			followGroup.GET("/:user_id/followers/count", group.FollowHandler.GetFollowerCount)
			followGroup.GET("/:user_id/followings", group.FollowHandler.GetFollowing)
			followGroup.GET("/:user_id/followings/count", group.FollowHandler.GetFollowingCount)
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(auth)
		{
			notificationGroup.GET("/list", group.NotificationHandler.GetList)
			notificationGroup.GET("/unread", group.NotificationHandler.GetUnreadCount)
		}

		exploreGroup := apiGroup.Group("/explore")
		{
			exploreGroup.GET("/search", group.ExploreHandler.Search)
			exploreGroup.GET("/latest", group.ExploreHandler.GetLatest)
		}

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.Use(auth)
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}

		apiGroup.GET("/ws", group.WSHandler.Connect)
	}

	return r
}
