package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbadapter "socialfeed/internal/adapters/database"
	"socialfeed/internal/adapters/httpapi"
	kafkaadapter "socialfeed/internal/adapters/kafka"
	redisadapter "socialfeed/internal/adapters/redis"
	"socialfeed/internal/config"
	"socialfeed/internal/core/fanout"
	fanoutapp "socialfeed/internal/core/fanout/service"
	"socialfeed/internal/core/follower"
	followerapp "socialfeed/internal/core/follower/service"
	"socialfeed/internal/core/post"
	postapp "socialfeed/internal/core/post/service"
	timelineapp "socialfeed/internal/core/timeline/service"
	"socialfeed/internal/core/user"
	"socialfeed/internal/metrics"
	fanoutPort "socialfeed/internal/ports/fanout"
	"socialfeed/internal/workers"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger depends on config
		log.Fatalf("config: %v", err)
	}

	logger, err := config.InitLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.InitDB(cfg.DBDSN, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&user.User{},
		&post.Post{},
		&post.Like{},
		&follower.Follower{},
		&fanout.FanoutQueue{},
	); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}
	logger.Info("database migrations completed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := config.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Fatal("redis connection failed", zap.Error(err))
	}

	queue, closeQueue := buildQueue(cfg, db, redisClient, logger)
	defer closeQueue()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	postRepo := dbadapter.NewPostRepositoryDatabase(db)
	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	followerRepo := dbadapter.NewFollowerRepositoryDatabase(db)
	timelineReader := dbadapter.NewTimelineReaderDatabase(db)
	timelineCache := redisadapter.NewTimelineCacheRedis(redisClient, cfg.TimelineCacheLimit)

	postSvc := postapp.NewPostService(postRepo, queue, logger)
	followerSvc := followerapp.NewFollowerService(followerRepo, userRepo, queue, logger)
	timelineSvc := timelineapp.NewTimelineService(timelineCache, timelineReader,
		cfg.TimelineDefaultLimit, cfg.TimelineMaxLimit, m, logger)

	fanoutSvc := fanoutapp.NewFanoutService(timelineCache, followerRepo, timelineReader,
		cfg.BatchSize, cfg.FanoutSeedLimit, logger)
	dispatcher := fanoutapp.NewDispatcher()
	fanoutapp.RegisterHandlers(dispatcher, fanoutSvc)

	worker := workers.NewFanoutWorker(queue, dispatcher, cfg.FanoutPoolSize,
		cfg.FanoutPollTimeout, cfg.FanoutShutdownTimeout, m, logger)
	if err := worker.Start(context.Background()); err != nil {
		logger.Fatal("fanout worker failed to start", zap.Error(err))
	}

	hostname, _ := os.Hostname()
	r := httpapi.SetupRoutes(postSvc, followerSvc, timelineSvc, httpapi.RouterDeps{
		JWTSecret:  []byte(cfg.JWTSecret),
		Registry:   registry,
		InstanceID: hostname,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	worker.Stop()
	closeResources(logger, db, redisClient)
}

func buildQueue(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) (fanoutPort.Queue, func()) {
	switch cfg.QueueBackend {
	case config.QueueDatabase:
		logger.Info("fanout queue backend", zap.String("backend", cfg.QueueBackend))
		return dbadapter.NewFanoutQueueDatabase(db), func() {}
	case config.QueueKafka:
		logger.Info("fanout queue backend",
			zap.String("backend", cfg.QueueBackend),
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
		q := kafkaadapter.NewFanoutQueueKafka(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		return q, func() {
			if err := q.Close(); err != nil {
				logger.Error("closing kafka queue", zap.Error(err))
			}
		}
	default:
		logger.Info("fanout queue backend", zap.String("backend", cfg.QueueBackend), zap.String("key", cfg.FanoutQueueKey))
		return redisadapter.NewFanoutQueueRedis(redisClient, cfg.FanoutQueueKey), func() {}
	}
}
