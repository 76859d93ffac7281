package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/whatsoo/backend/internal/cache"
	"github.com/whatsoo/backend/internal/client"
	"github.com/whatsoo/backend/internal/config"
	"github.com/whatsoo/backend/internal/db"
	"github.com/whatsoo/backend/internal/handler"
	"github.com/whatsoo/backend/internal/service"
	"github.com/whatsoo/backend/internal/token"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	sessionTTL, err := time.ParseDuration(cfg.Auth.SessionTTL)
	if err != nil {
		logger.Error("invalid SESSION_TTL", "err", err)
		os.Exit(1)
	}
	rememberTTL, err := time.ParseDuration(cfg.Auth.RememberTTL)
	if err != nil {
		logger.Error("invalid REMEMBER_TTL", "err", err)
		os.Exit(1)
	}

	codec, err := token.NewCodec([]byte(cfg.Auth.TokenSecret))
	if err != nil {
		logger.Error("TOKEN_SECRET is required", "err", err)
		os.Exit(1)
	}

	pg, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.EnsureSchema(ctx); err != nil {
		logger.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	redisDB, err := strconv.Atoi(cfg.Redis.DB)
	if err != nil {
		logger.Error("invalid REDIS_DB", "err", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       redisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", "err", err)
		os.Exit(1)
	}

	smtpPort, err := strconv.Atoi(cfg.SMTP.Port)
	if err != nil {
		logger.Error("invalid SMTP_PORT", "err", err)
		os.Exit(1)
	}
	mailer, err := client.NewMailer(cfg.SMTP.Host, smtpPort, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	if err != nil {
		logger.Error("mailer init failed", "err", err)
		os.Exit(1)
	}

	codes := cache.NewCodeStore(rdb)
	challenges := service.NewChallengeService(codes, mailer, logger)
	auth := service.NewAuthService(pg, challenges, codec, sessionTTL, rememberTTL, logger)
	topics := service.NewTopicService(pg)

	authHandler := handler.NewAuthHandler(auth, challenges)
	topicHandler := handler.NewTopicHandler(topics)

	router := gin.Default()
	if origins := cfg.Server.AllowedOrigins; origins != "" {
		router.Use(handler.CORSMiddleware(strings.Split(origins, ","), true))
	}

	router.GET("/ping", handler.Ping)
	router.GET("/captcha", authHandler.GetCaptcha)
	router.POST("/verify/captcha", authHandler.VerifyCaptcha)
	router.POST("/verify/email", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.POST("/password/reset", authHandler.ResetPassword)
	router.GET("/user/validate/email/:email", authHandler.ValidateEmail)
	router.GET("/user/validate/username/:username", authHandler.ValidateUsername)
	router.GET("/topics", topicHandler.List)

	protected := router.Group("/", handler.AuthMiddleware(codec))
	protected.GET("/user/me", authHandler.Me)
	protected.POST("/topic", topicHandler.Create)

	logger.Info("listening", "addr", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
