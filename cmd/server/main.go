// Package main runs the arcade backend HTTP server with the in-process
// popularity ranking scheduler and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arcade-pulse/backend/config"
	"github.com/arcade-pulse/backend/internal/contestants"
	"github.com/arcade-pulse/backend/internal/games"
	"github.com/arcade-pulse/backend/internal/leaderboard"
	"github.com/arcade-pulse/backend/internal/middleware"
	"github.com/arcade-pulse/backend/internal/popularity"
	"github.com/arcade-pulse/backend/internal/realtime"
	"github.com/arcade-pulse/backend/internal/sessions"
	"github.com/arcade-pulse/backend/pkg/database"
	"github.com/arcade-pulse/backend/pkg/redis"
	"github.com/arcade-pulse/backend/pkg/response"
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

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Realtime fan-out
	hub := realtime.NewHub(logger)
	bridge := realtime.NewBridge(rdb.Client, hub, logger)

	// Contestants
	contestantRepo := contestants.NewRepository(pool)
	contestantHandler := contestants.NewHandler(contestantRepo)

	// Games
	gameRepo := games.NewRepository(pool)
	gameHandler := games.NewHandler(gameRepo)

	// Sessions
	sessionRepo := sessions.NewRepository(pool)
	sessionManager := sessions.NewManager(sessionRepo, cfg.Session, bridge, logger)
	sessionHandler := sessions.NewHandler(sessionManager)

	// Leaderboard
	leaderboardRepo := leaderboard.NewRepository(pool)
	leaderboardHandler := leaderboard.NewHandler(leaderboardRepo)

	// Popularity ranking
	aggregator := popularity.NewAggregator(pool)
	mirror := popularity.NewRedisMirror(rdb.Client, logger)
	var scheduler *popularity.Scheduler
	if cfg.Ranking.Enabled {
		scheduler = popularity.NewScheduler(aggregator, cfg.Ranking, mirror, bridge, logger)
	}
	popularityHandler := popularity.NewHandler(scheduler, mirror)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Contestants
	router.POST("/contestants", contestantHandler.Create)
	router.GET("/contestants", contestantHandler.List)
	router.PATCH("/contestants/:id", contestantHandler.Update)
	router.DELETE("/contestants/:id", contestantHandler.Delete)

	// Games
	router.POST("/games", gameHandler.Create)
	router.GET("/games", gameHandler.List)
	router.GET("/games/:id", gameHandler.GetByID)
	router.PATCH("/games/:id", gameHandler.Update)
	router.DELETE("/games/:id", gameHandler.Delete)
	router.POST("/games/:id/upvote", gameHandler.Upvote)

	// Sessions
	router.POST("/games/:id/sessions", sessionHandler.Start)
	router.GET("/sessions", sessionHandler.List)
	router.PATCH("/sessions/:id/score", sessionHandler.RecordScore)
	router.POST("/sessions/:id/end", sessionHandler.End)

	// Leaderboard and popularity
	router.GET("/leaderboard", leaderboardHandler.List)
	router.GET("/popularity", popularityHandler.Get)

	// WebSocket event stream
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go bridge.Run(workerCtx)
	if scheduler != nil {
		go scheduler.Run(workerCtx)
		logger.Info("ranking scheduler started", zap.Duration("interval", cfg.Ranking.Interval))
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
