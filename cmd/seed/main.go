package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbadapter "socialfeed/internal/adapters/database"
	"socialfeed/internal/adapters/httpapi/middleware"
	kafkaadapter "socialfeed/internal/adapters/kafka"
	redisadapter "socialfeed/internal/adapters/redis"
	"socialfeed/internal/config"
	followerapp "socialfeed/internal/core/follower/service"
	postapp "socialfeed/internal/core/post/service"
	"socialfeed/internal/core/user"
	fanoutPort "socialfeed/internal/ports/fanout"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		numUsers     int
		postsPerUser int
		tokens       int
		tokenTTL     time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a development database with users, follows and posts",
		Long: "seed creates users that all follow each other and gives each of them posts. " +
			"Writes go through the post and follower services, so a running app fans them out.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, numUsers, postsPerUser, tokens, tokenTTL)
		},
	}
	rootCmd.Flags().IntVar(&numUsers, "users", 50, "number of users to create")
	rootCmd.Flags().IntVar(&postsPerUser, "posts", 10, "posts per user")
	rootCmd.Flags().IntVar(&tokens, "tokens", 3, "print bearer tokens for this many seeded users")
	rootCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of printed tokens")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, numUsers, postsPerUser, tokens int, tokenTTL time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := config.InitLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.InitDB(cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	redisClient, err := config.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var producer fanoutPort.Producer
	switch cfg.QueueBackend {
	case config.QueueDatabase:
		producer = dbadapter.NewFanoutQueueDatabase(db)
	case config.QueueKafka:
		q := kafkaadapter.NewFanoutQueueKafka(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		defer q.Close()
		producer = q
	default:
		producer = redisadapter.NewFanoutQueueRedis(redisClient, cfg.FanoutQueueKey)
	}

	userRepo := dbadapter.NewUserRepositoryDatabase(db)
	postSvc := postapp.NewPostService(dbadapter.NewPostRepositoryDatabase(db), producer, logger)
	followerSvc := followerapp.NewFollowerService(dbadapter.NewFollowerRepositoryDatabase(db), userRepo, producer, logger)

	logger.Info("🚀 creating users", zap.Int("count", numUsers))
	stamp := time.Now().Unix()
	userIDs := make([]int64, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := userRepo.Create(ctx, &user.User{
			Name:     fmt.Sprintf("Test%d", i),
			Family:   "User",
			Username: fmt.Sprintf("seed%d_%d", stamp, i),
		})
		if err != nil {
			logger.Error("could not create user", zap.Int("index", i), zap.Error(err))
			continue
		}
		userIDs = append(userIDs, u.ID)
	}
	logger.Info("✅ users created", zap.Int("count", len(userIDs)))

	follows := 0
	for _, followerID := range userIDs {
		for _, followeeID := range userIDs {
			if followerID == followeeID {
				continue
			}
			if err := followerSvc.FollowUser(ctx, followerID, followeeID); err != nil {
				logger.Error("could not follow",
					zap.Int64("followerID", followerID),
					zap.Int64("followeeID", followeeID),
					zap.Error(err))
				continue
			}
			follows++
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	logger.Info("✅ follows created", zap.Int("count", follows))

	posts := 0
	for _, uid := range userIDs {
		for p := 1; p <= postsPerUser; p++ {
			if _, err := postSvc.CreatePost(ctx, uid, fmt.Sprintf("Post %d by user %d", p, uid)); err != nil {
				logger.Error("could not create post", zap.Int64("userID", uid), zap.Error(err))
				continue
			}
			posts++
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	logger.Info("✅ posts created", zap.Int("count", posts))

	for i := 0; i < tokens && i < len(userIDs); i++ {
		tok, err := middleware.IssueToken([]byte(cfg.JWTSecret), userIDs[i], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Printf("user %d: Bearer %s\n", userIDs[i], tok)
	}
	return nil
}
