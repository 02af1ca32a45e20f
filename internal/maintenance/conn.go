package maintenance

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"maintkv/internal/config"
)

// connURLEnvVars 未显式指定连接目标时，按优先级依次查找的环境变量
var connURLEnvVars = []string{"REDIS_PROVIDER", "REDIS_URL", "REDIS_SERVER"}

// DefaultAddr 没有任何连接配置时使用的进程级默认地址
const DefaultAddr = "localhost:6379"

// ConnOptions Redis 连接参数
// URL 优先于 Addr；二者皆空表示未指定连接目标
type ConnOptions struct {
	URL      string
	Addr     string
	Username string
	Password string
	DB       int
}

// hasTarget 是否已显式指定连接目标
func (o *ConnOptions) hasTarget() bool {
	return o != nil && (o.URL != "" || o.Addr != "")
}

// ResolveConnOptions 解析最终连接参数
//  1. opts 已含 URL 或 Addr：原样返回
//  2. REDIS_PROVIDER / REDIS_URL / REDIS_SERVER 中第一个非空值合并为 URL
//  3. 否则返回 nil，由 Dial 使用进程默认连接
func ResolveConnOptions(opts *ConnOptions, getenv func(string) string) *ConnOptions {
	if opts.hasTarget() {
		return opts
	}
	for _, name := range connURLEnvVars {
		url := getenv(name)
		if url == "" {
			continue
		}
		merged := ConnOptions{}
		if opts != nil {
			merged = *opts
		}
		merged.URL = url
		return &merged
	}
	return opts
}

// redisOptions 转换为 go-redis 参数并应用连接池配置
func (o *ConnOptions) redisOptions() (*redis.Options, error) {
	var ropts *redis.Options
	switch {
	case o == nil || !o.hasTarget():
		ropts = &redis.Options{Addr: DefaultAddr}
		if o != nil {
			ropts.Username, ropts.Password, ropts.DB = o.Username, o.Password, o.DB
		}
	case o.URL != "":
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		ropts = parsed
		if o.Username != "" {
			ropts.Username = o.Username
		}
		if o.Password != "" {
			ropts.Password = o.Password
		}
		if o.DB != 0 {
			ropts.DB = o.DB
		}
	default:
		ropts = &redis.Options{
			Addr:     o.Addr,
			Username: o.Username,
			Password: o.Password,
			DB:       o.DB,
		}
	}

	// 连接池参数，客户端自行管理复用
	ropts.PoolSize = config.RedisPoolSize
	ropts.MinIdleConns = config.RedisMinIdleConns
	ropts.ConnMaxLifetime = config.RedisConnMaxLifetime
	ropts.DialTimeout = config.RedisDialTimeout
	ropts.ReadTimeout = config.RedisReadTimeout
	ropts.WriteTimeout = config.RedisWriteTimeout
	return ropts, nil
}

// Dial 创建 Redis 客户端并执行一次 PING，连接错误直接返回
func Dial(ctx context.Context, opts *ConnOptions) (*redis.Client, error) {
	ropts, err := opts.redisOptions()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(ropts)

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisDialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
