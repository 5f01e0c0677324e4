package app

import (
	"go-leavedesk/internal/shared/config"
	"go-leavedesk/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine, cfg config.Config) error {
	logger := zap.L().Named("app")

	// 1. Setup infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB, 5)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, 5)
	if err != nil {
		// Redis hanya untuk cache dan idempotency; API tetap jalan tanpanya.
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		redisClient = nil
	} else {
		logger.Info("redis connection established")
	}

	// 2. Register modules & routes
	return registerModules(router, gormDB, redisClient)
}
