package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaintenanceDefaults 维护模式设置的进程级默认值
// 优先级: 内置常量 < YAML 文件 < MAINTKV_DEFAULT_* 环境变量
type MaintenanceDefaults struct {
	reason       string
	allowedPaths []string
	allowedIPs   []string
	responseCode int
	retryAfter   string
	redisKey     string
}

// defaultsFile YAML 文件结构，指针字段区分“未配置”和“零值”
type defaultsFile struct {
	Reason       *string  `yaml:"reason"`
	AllowedPaths []string `yaml:"allowed_paths"`
	AllowedIPs   []string `yaml:"allowed_ips"`
	ResponseCode *int     `yaml:"response_code"`
	RetryAfter   *string  `yaml:"retry_after"`
	RedisKey     *string  `yaml:"redis_key"`
}

// BuiltinDefaults 返回内置默认值
func BuiltinDefaults() *MaintenanceDefaults {
	return &MaintenanceDefaults{
		reason:       DefaultReason,
		allowedPaths: []string{},
		allowedIPs:   []string{},
		responseCode: DefaultResponseCode,
		retryAfter:   DefaultRetryAfter,
		redisKey:     DefaultRedisKey,
	}
}

// LoadDefaults 加载默认值；path 为空时跳过 YAML 文件
func LoadDefaults(path string) (*MaintenanceDefaults, error) {
	return loadDefaults(path, os.Getenv)
}

func loadDefaults(path string, getenv func(string) string) (*MaintenanceDefaults, error) {
	d := BuiltinDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read defaults file: %w", err)
		}
		var f defaultsFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse defaults file: %w", err)
		}
		d.applyFile(&f)
	}

	d.applyEnv(getenv)
	return d, nil
}

func (d *MaintenanceDefaults) applyFile(f *defaultsFile) {
	if f.Reason != nil {
		d.reason = *f.Reason
	}
	if f.AllowedPaths != nil {
		d.allowedPaths = f.AllowedPaths
	}
	if f.AllowedIPs != nil {
		d.allowedIPs = f.AllowedIPs
	}
	if f.ResponseCode != nil {
		d.responseCode = *f.ResponseCode
	}
	if f.RetryAfter != nil {
		d.retryAfter = *f.RetryAfter
	}
	if f.RedisKey != nil && *f.RedisKey != "" {
		d.redisKey = *f.RedisKey
	}
}

// applyEnv 环境变量覆盖，列表按逗号拆分并去空白
func (d *MaintenanceDefaults) applyEnv(getenv func(string) string) {
	d.reason = getEnvOrDefault(getenv, "MAINTKV_DEFAULT_REASON", d.reason)
	if v := getenv("MAINTKV_DEFAULT_ALLOWED_PATHS"); v != "" {
		d.allowedPaths = splitList(v)
	}
	if v := getenv("MAINTKV_DEFAULT_ALLOWED_IPS"); v != "" {
		d.allowedIPs = splitList(v)
	}
	d.responseCode = getIntEnv(getenv, "MAINTKV_DEFAULT_RESPONSE_CODE", d.responseCode)
	d.retryAfter = getEnvOrDefault(getenv, "MAINTKV_DEFAULT_RETRY_AFTER", d.retryAfter)
	d.redisKey = getEnvOrDefault(getenv, "MAINTKV_REDIS_KEY", d.redisKey)
}

func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (d *MaintenanceDefaults) Reason() string         { return d.reason }
func (d *MaintenanceDefaults) AllowedPaths() []string { return d.allowedPaths }
func (d *MaintenanceDefaults) AllowedIPs() []string   { return d.allowedIPs }
func (d *MaintenanceDefaults) ResponseCode() int      { return d.responseCode }
func (d *MaintenanceDefaults) RetryAfter() string     { return d.retryAfter }
func (d *MaintenanceDefaults) RedisKey() string       { return d.redisKey }
