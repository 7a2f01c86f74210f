package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"mood-ai/internal/ai"
	"mood-ai/internal/config"
	"mood-ai/internal/db"
	apihttp "mood-ai/internal/http"
	"mood-ai/internal/repository"
	"mood-ai/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	chatRepo := repository.NewPgChatRepository(pool)
	responder := ai.NewHTTPResponder(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	if cfg.LLMAPIKey == "" {
		logger.Warn("llm api key not configured, using heuristic responses")
	}

	var (
		tokenStore  service.RefreshTokenStore
		limiter     service.RateLimiter
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			limiter = service.NewRedisRateLimiter(redisClient, cfg.AnonRateWindow, cfg.AnonRateMax)
		}
		cancel()
	}
	if limiter == nil {
		limiter = service.NewMemoryRateLimiter(cfg.AnonRateWindow, cfg.AnonRateMax)
	}

	jwtSvc := service.NewJWTServiceWithStore(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokenStore)

	userSvc := service.NewUserService(logger, userRepo, chatRepo)
	summarySvc := service.NewSummaryService(logger, chatRepo, userRepo)

	if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Warn("admin seed failed", zap.Error(err))
	}

	authHandler := apihttp.NewAuthHandler(logger, userSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, responder, chatRepo, limiter)
	dashHandler := apihttp.NewDashboardHandler(logger, summarySvc)
	adminHandler := apihttp.NewAdminHandler(logger, userSvc, summarySvc, chatRepo)
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, chatHandler, dashHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
