package kafka

import (
	"Glimpse/internal/api/config"
	"Glimpse/internal/pkg/es"
	"Glimpse/internal/repository"
	"Glimpse/internal/service"
	"Glimpse/internal/session"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	consumers []namedConsumer
}

type namedConsumer struct {
	topic   string
	group   sarama.ConsumerGroup
	handler sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	esPostRepo es.PostRepo,
	profiles service.ProfileProvider,
	sessions *session.Manager,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	bindings := []struct {
		binding config.KafkaConsumerBinding
		handler sarama.ConsumerGroupHandler
	}{
		{cfg.KafkaLikesConsumer, NewLikesHandler(sessions)},
		{cfg.KafkaCommentsConsumer, NewCommentsHandler(sessions)},
		{cfg.KafkaReactionsConsumer, NewReactionsHandler(sessions)},
		{cfg.KafkaFollowsConsumer, NewFollowsHandler(sessions)},
		{cfg.KafkaPostsConsumer, NewPostsHandler(postRepo, userRepo, esPostRepo, sessions)},
		{cfg.KafkaUsersConsumer, NewUsersHandler(profiles, sessions)},
	}

	m := &ConsumerManager{}
	for _, b := range bindings {
		group, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, b.binding.GroupID, saramaCfg)
		if err != nil {
			return nil, err
		}
		m.consumers = append(m.consumers, namedConsumer{
			topic:   b.binding.Topic,
			group:   group,
			handler: b.handler,
		})
	}
	return m, nil
}

// Start 启动所有消费者，阻塞到 ctx 取消
func (m *ConsumerManager) Start(ctx context.Context) error {
	for _, c := range m.consumers {
		go func(c namedConsumer) {
			log.Info("consumer started", "topic", c.topic)
			for {
				if err := c.group.Consume(ctx, []string{c.topic}, c.handler); err != nil {
					log.Error("Error from consumer", "topic", c.topic, "err", err)
				}
				if ctx.Err() != nil {
					return
				}
			}
		}(c)
	}

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	for _, c := range m.consumers {
		if err := c.group.Close(); err != nil {
			log.Error("Failed to close consumer", "topic", c.topic, "err", err)
		}
	}
	return nil
}
