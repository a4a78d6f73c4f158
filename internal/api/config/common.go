package config

// Config 配置主体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Elastic  ElasticConfig  `mapstructure:"elastic"`
	Logstash LogstashConfig `mapstructure:"logstash"`
	Push     PushConfig     `mapstructure:"push"`
	Feed     FeedConfig     `mapstructure:"feed"`

	Kafka                      KafkaConfig           `mapstructure:"kafka"`
	KafkaLikesConsumer         KafkaConsumerBinding  `mapstructure:"kafka_likes_consumer"`
	KafkaCommentsConsumer      KafkaConsumerBinding  `mapstructure:"kafka_comments_consumer"`
	KafkaReactionsConsumer     KafkaConsumerBinding  `mapstructure:"kafka_reactions_consumer"`
	KafkaFollowsConsumer       KafkaConsumerBinding  `mapstructure:"kafka_follows_consumer"`
	KafkaPostsConsumer         KafkaConsumerBinding  `mapstructure:"kafka_posts_consumer"`
	KafkaUsersConsumer         KafkaConsumerBinding  `mapstructure:"kafka_users_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig 通知存储配置
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MediaBucket      string `mapstructure:"media_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
}

// ElasticConfig Elastic配置
type ElasticConfig struct {
	Address  string         `mapstructure:"address"`
	Username string         `mapstructure:"username"`
	Password string         `mapstructure:"password"`
	Indices  ElasticIndices `mapstructure:"indices"`
}

// ElasticIndices Elastic索引
type ElasticIndices struct {
	UserIndex string `mapstructure:"user_index"`
	PostIndex string `mapstructure:"post_index"`
}

// LogstashConfig 远程日志配置
type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// PushConfig 移动端角标推送网关配置
type PushConfig struct {
	GatewayURL string `mapstructure:"gateway_url"`
	ApiKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"`
}

// FeedConfig Feed 流配置
type FeedConfig struct {
	WindowSize  int     `mapstructure:"window_size"`
	JitterRange float64 `mapstructure:"jitter_range"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaConsumerBinding 单个消费者的 topic/group 绑定
type KafkaConsumerBinding struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
