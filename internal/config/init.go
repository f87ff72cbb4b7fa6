package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Queue backends accepted by QUEUE_BACKEND.
const (
	QueueRedis    = "redis"
	QueueDatabase = "database"
	QueueKafka    = "kafka"
)

type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	DBDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	QueueBackend   string
	FanoutQueueKey string
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaGroupID   string

	TimelineCacheLimit    int64
	FanoutPoolSize        int
	FanoutPollTimeout     time.Duration
	FanoutShutdownTimeout time.Duration
	FanoutSeedLimit       int
	BatchSize             int

	TimelineDefaultLimit int
	TimelineMaxLimit     int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("QUEUE_BACKEND", QueueRedis)
	v.SetDefault("FANOUT_QUEUE_KEY", "fanout:queue")
	v.SetDefault("KAFKA_TOPIC", "fanout-events")
	v.SetDefault("KAFKA_GROUP_ID", "fanout-worker")
	v.SetDefault("TIMELINE_CACHE_LIMIT", 1000)
	v.SetDefault("FANOUT_POOL_SIZE", 10)
	v.SetDefault("FANOUT_POLL_TIMEOUT", 3*time.Second)
	v.SetDefault("FANOUT_SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("FANOUT_SEED_LIMIT", 50)
	v.SetDefault("BATCH_SIZE", 100)
	v.SetDefault("TIMELINE_DEFAULT_LIMIT", 20)
	v.SetDefault("TIMELINE_MAX_LIMIT", 100)
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppPort:  v.GetString("APP_PORT"),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDSN: v.GetString("DB_DSN"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret: v.GetString("JWT_SECRET"),

		QueueBackend:   strings.ToLower(v.GetString("QUEUE_BACKEND")),
		FanoutQueueKey: v.GetString("FANOUT_QUEUE_KEY"),
		KafkaTopic:     v.GetString("KAFKA_TOPIC"),
		KafkaGroupID:   v.GetString("KAFKA_GROUP_ID"),

		TimelineCacheLimit:    v.GetInt64("TIMELINE_CACHE_LIMIT"),
		FanoutPoolSize:        v.GetInt("FANOUT_POOL_SIZE"),
		FanoutPollTimeout:     v.GetDuration("FANOUT_POLL_TIMEOUT"),
		FanoutShutdownTimeout: v.GetDuration("FANOUT_SHUTDOWN_TIMEOUT"),
		FanoutSeedLimit:       v.GetInt("FANOUT_SEED_LIMIT"),
		BatchSize:             v.GetInt("BATCH_SIZE"),

		TimelineDefaultLimit: v.GetInt("TIMELINE_DEFAULT_LIMIT"),
		TimelineMaxLimit:     v.GetInt("TIMELINE_MAX_LIMIT"),
	}
	if brokers := v.GetString("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.RedisAddr == "" {
		missing = append(missing, "REDIS_ADDR")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.QueueBackend == QueueKafka && len(c.KafkaBrokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	switch c.QueueBackend {
	case QueueRedis, QueueDatabase, QueueKafka:
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", c.QueueBackend)
	}
	if c.TimelineCacheLimit <= 0 || c.FanoutPoolSize <= 0 || c.BatchSize <= 0 {
		return fmt.Errorf("TIMELINE_CACHE_LIMIT, FANOUT_POOL_SIZE and BATCH_SIZE must be positive")
	}
	return nil
}
