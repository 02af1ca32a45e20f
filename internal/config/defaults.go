package config

import "time"

// HTTP服务器配置常量
const (
	// DefaultPort 管理API默认监听端口
	DefaultPort = ":8080"

	// HTTPReadHeaderTimeout 读取请求头超时
	HTTPReadHeaderTimeout = 5 * time.Second

	// HTTPShutdownTimeout 优雅关闭等待时间
	HTTPShutdownTimeout = 5 * time.Second

	// DefaultMaxBodyBytes 管理API请求体上限
	DefaultMaxBodyBytes = 64 * 1024 // 64KB
)

// Redis连接池配置常量
const (
	// RedisPoolSize 连接池大小（管理操作频率低，无需过大）
	RedisPoolSize = 10

	// RedisMinIdleConns 最小空闲连接数
	RedisMinIdleConns = 2

	// RedisConnMaxLifetime 连接最大生命周期
	RedisConnMaxLifetime = 5 * time.Minute

	// RedisDialTimeout 建连超时（同时用于启动时的 PING）
	RedisDialTimeout = 3 * time.Second

	// RedisReadTimeout 读超时
	RedisReadTimeout = 2 * time.Second

	// RedisWriteTimeout 写超时
	RedisWriteTimeout = 2 * time.Second
)

// 日志配置常量
const (
	// LogMaxMessageLength 单条日志消息最大长度（字符）
	LogMaxMessageLength = 2000
)

// 维护模式默认值
const (
	DefaultReason       = "The site is temporarily down for maintenance.\nPlease check back soon."
	DefaultResponseCode = 503
	DefaultRetryAfter   = "7200"
	DefaultRedisKey     = "maintkv:maintenance"
)
