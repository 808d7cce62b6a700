// Package main runs the standalone popularity ranking worker. Use it to
// move ranking computation out of the request-serving processes: servers
// started with RANKING_SCHEDULER_ENABLED=false serve the Redis-mirrored
// snapshot this worker maintains.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/popularity"
	"github.com/arcade-pulse/backend/internal/realtime"
	"github.com/arcade-pulse/backend/pkg/database"
	"github.com/arcade-pulse/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// The worker has no local websocket clients; the bridge only publishes
	// ranking_updated events for the server instances to fan out.
	bridge := realtime.NewBridge(rdb.Client, realtime.NewHub(logger), logger)

	aggregator := popularity.NewAggregator(pool)
	mirror := popularity.NewRedisMirror(rdb.Client, logger)
	scheduler := popularity.NewScheduler(aggregator, cfg.Ranking, mirror, bridge, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		scheduler.Run(workerCtx)
		close(done)
	}()
	logger.Info("ranking worker started", zap.Duration("interval", cfg.Ranking.Interval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("ranking worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
