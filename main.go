package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"maintkv/internal/app"
	"maintkv/internal/config"
	"maintkv/internal/maintenance"
	"maintkv/internal/util"
	"maintkv/internal/version"
)

func main() {
	version.PrintBanner()

	// 优先读取.env文件
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	logger, err := util.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	defaults, err := config.LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		logger.Fatal("维护模式默认值加载失败", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 连接目标: REDIS_PROVIDER > REDIS_URL > REDIS_SERVER > 本地默认
	connOpts := maintenance.ResolveConnOptions(nil, os.Getenv)
	target := maintenance.DefaultAddr
	if connOpts != nil {
		target = util.RedactURL(connOpts.URL)
	}
	client, err := maintenance.Dial(ctx, connOpts)
	if err != nil {
		logger.Fatal("Redis连接失败", zap.String("target", target), zap.Error(err))
	}
	defer client.Close()
	logger.Info("redis connected", zap.String("target", target), zap.String("key", defaults.RedisKey()))

	srv, err := app.NewServer(client, defaults, cfg.AdminPassword, logger)
	if err != nil {
		logger.Fatal("服务初始化失败", zap.Error(err))
	}

	// 设置Gin运行模式
	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(app.RequestLogger(logger))
	r.Use(gin.Recovery())
	srv.SetupRoutes(r)

	httpServer := &http.Server{
		Addr:              cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: config.HTTPReadHeaderTimeout,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务异常退出", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
