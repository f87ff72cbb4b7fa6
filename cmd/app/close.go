package main

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// closeResources closes the Redis and database connections.
func closeResources(logger *zap.Logger, db *gorm.DB, redisClient *redis.Client) {
	if err := redisClient.Close(); err != nil {
		logger.Error("closing redis connection", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("getting raw database handle", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("closing database connection", zap.Error(err))
	}
}
