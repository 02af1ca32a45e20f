package config

import (
	"os"
	"strconv"
	"strings"

	apperrors "maintkv/internal/errors"
)

// EnvConfig 统一环境变量配置结构
type EnvConfig struct {
	// 服务配置
	Port          string
	GinMode       string
	AdminPassword string

	// 维护模式默认值文件（YAML，可选）
	DefaultsFile string

	// 日志配置
	LogLevel string
	LogDev   bool
}

// LoadFromEnv 从环境变量加载配置并验证
// Redis 连接目标不在此处读取：REDIS_PROVIDER/REDIS_URL/REDIS_SERVER
// 由 maintenance.ResolveConnOptions 按优先级解析
func LoadFromEnv() (*EnvConfig, error) {
	return loadFromLookup(os.Getenv)
}

func loadFromLookup(getenv func(string) string) (*EnvConfig, error) {
	cfg := &EnvConfig{}

	cfg.Port = normalizePort(getEnvOrDefault(getenv, "PORT", DefaultPort))
	cfg.GinMode = getenv("GIN_MODE")
	cfg.AdminPassword = getenv("MAINTKV_ADMIN_PASS")

	// 管理API必须配置密码
	if cfg.AdminPassword == "" {
		return nil, apperrors.MissingConfigError("MAINTKV_ADMIN_PASS")
	}

	cfg.DefaultsFile = getenv("MAINTKV_DEFAULTS_FILE")

	cfg.LogDev = getBoolEnv(getenv, "LOG_DEV", false)
	cfg.LogLevel = getEnvOrDefault(getenv, "LOG_LEVEL", "")
	if cfg.LogLevel == "" {
		if cfg.LogDev {
			cfg.LogLevel = "debug"
		} else {
			cfg.LogLevel = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置合法性
func (c *EnvConfig) Validate() error {
	portNum, err := strconv.Atoi(strings.TrimPrefix(c.Port, ":"))
	if err != nil || portNum < 1 || portNum > 65535 {
		return apperrors.InvalidConfigError("PORT", "must be 1-65535, got "+c.Port)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return apperrors.InvalidConfigError("LOG_LEVEL", "unknown level "+c.LogLevel)
	}
	return nil
}

func normalizePort(v string) string {
	if !strings.HasPrefix(v, ":") {
		return ":" + v
	}
	return v
}

// 辅助函数：获取环境变量或默认值
func getEnvOrDefault(getenv func(string) string, key, defaultValue string) string {
	if val := getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量（允许 0 和负数，解析失败时用默认值）
func getIntEnv(getenv func(string) string, key string, defaultValue int) int {
	if val := getenv(key); val != "" {
		if intVal, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getBoolEnv(getenv func(string) string, key string, defaultValue bool) bool {
	val := getenv(key)
	if val == "1" || strings.EqualFold(val, "true") {
		return true
	}
	if val == "0" || strings.EqualFold(val, "false") {
		return false
	}
	return defaultValue
}
