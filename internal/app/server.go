package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"maintkv/internal/maintenance"
	"maintkv/internal/util"
)

// StoreClient 管理API需要的 Redis 能力：记录读写 + 健康检查
type StoreClient interface {
	maintenance.Client
	Ping(ctx context.Context) *redis.StatusCmd
}

// Server 维护模式设置的管理API
// 只负责读写共享记录，渲染维护页面的中间件不在此处
type Server struct {
	client       StoreClient
	defaults     maintenance.Defaults
	passwordHash []byte // 管理员密码bcrypt哈希
	logger       *zap.Logger

	// environ 返回进程环境，用于 rake 风格的环境变量导入（测试可替换）
	environ func() []string
}

// NewServer 创建管理API服务
func NewServer(client StoreClient, defaults maintenance.Defaults, password string, logger *zap.Logger) (*Server, error) {
	if password == "" {
		return nil, fmt.Errorf("admin password must not be empty")
	}
	// 密码bcrypt哈希（安全存储）
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		client:       client,
		defaults:     defaults,
		passwordHash: passwordHash,
		logger:       logger,
		environ:      os.Environ,
	}, nil
}

// SetupRoutes 注册路由
func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/health", s.handleHealth)

	admin := r.Group("/admin")
	admin.Use(s.requirePasswordAuth())
	{
		admin.GET("/maintenance", s.handleGetMaintenance)
		admin.PUT("/maintenance", s.handleUpdateMaintenance)
		admin.POST("/maintenance/env", s.handleImportEnv)
		admin.DELETE("/maintenance", s.handleDeleteMaintenance)
	}
}

// requirePasswordAuth 管理员密码认证中间件（Authorization: Bearer <password>）
func (s *Server) requirePasswordAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, prefix) {
			password := strings.TrimPrefix(authHeader, prefix)
			// 验证密码（bcrypt安全比较）
			if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil {
				c.Next()
				return
			}
		}

		s.logger.Warn("admin auth failed",
			zap.String("client_ip", c.ClientIP()),
			zap.String("path", util.SanitizeLogMessage(c.Request.URL.Path)))
		RespondErrorMsg(c, http.StatusUnauthorized, "未授权访问")
		c.Abort()
	}
}

// RequestLogger 用 zap 记录每个请求（替代 gin.Logger）
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", util.SanitizeLogMessage(c.Request.URL.Path)),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// handleHealth Redis 连通性检查
// GET /health
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.client.Ping(c.Request.Context()).Err(); err != nil {
		s.logger.Error("health check failed", zap.String("error", util.SanitizeError(err)))
		RespondErrorMsg(c, http.StatusServiceUnavailable, "redis unavailable")
		return
	}
	RespondJSON(c, http.StatusOK, gin.H{"status": "ok"})
}
