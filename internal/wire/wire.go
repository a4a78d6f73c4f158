package wire

import (
	"Glimpse/internal/api"
	"Glimpse/internal/api/config"
	"Glimpse/internal/api/handler"
	"Glimpse/internal/job"
	"Glimpse/internal/pkg/cron"
	"Glimpse/internal/pkg/es"
	"Glimpse/internal/pkg/kafka"
	pkgmongo "Glimpse/internal/pkg/mongo"
	"Glimpse/internal/pkg/push"
	"Glimpse/internal/repository"
	"Glimpse/internal/service"
	"Glimpse/internal/session"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	Sessions     *session.Manager
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	actionRepo := repository.NewPostActionRepo(db)
	followRepo := repository.NewFollowRepo(db)
	notifRepo := pkgmongo.NewNotificationRepo(mongoDB)
	esPostRepo := es.NewPostRepo(es.Client)
	esUserRepo := es.NewUserRepo(es.Client)

	sessions := session.NewManager()
	pushClient := push.NewClient()

	profiles := service.NewProfileProvider(userRepo)
	notificationService := service.NewNotificationService(notifRepo, userRepo, pushClient)
	userService := service.NewUserService(userRepo, followRepo, esUserRepo, esPostRepo, profiles, sessions)
	feedService := service.NewFeedService(postRepo, actionRepo, followRepo, profiles, notificationService)
	postService := service.NewPostService(postRepo, userRepo, esPostRepo, notifRepo, profiles)
	actionService := service.NewPostActionService(actionRepo, postRepo, profiles, notificationService)
	followService := service.NewFollowService(followRepo, userRepo, profiles, notificationService)
	exploreService := service.NewExploreService(esPostRepo, esUserRepo)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		FeedHandler:         handler.NewFeedHandler(feedService, sessions),
		PostHandler:         handler.NewPostHandler(postService),
		PostActionHandler:   handler.NewPostActionHandler(actionService),
		FollowHandler:       handler.NewFollowHandler(followService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		ExploreHandler:      handler.NewExploreHandler(exploreService),
		MediaHandler:        handler.NewMediaHandler(),
		WSHandler:           handler.NewWsHandler(sessions),
	}

	router := api.SetupRouter(handlers, sessions)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, postRepo, userRepo, esPostRepo, profiles, sessions)
	if err != nil {
		return nil, err
	}

	counterSyncJob := job.NewCounterSyncJob(postRepo, actionRepo)
	cronMgr := cron.NewCronManager(counterSyncJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		Sessions:     sessions,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
