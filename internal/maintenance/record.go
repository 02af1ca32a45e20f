// Package maintenance 维护模式设置记录
//
// 设置以单个 Redis hash 存储在一个键下，多个进程共享同一份记录。
// 写入是按字段的稀疏写：不存在的字段不会写入，也不会删除已存储的旧值。
package maintenance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Client Redis 客户端的最小依赖面，*redis.Client 直接满足
type Client interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...any) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Defaults 构造记录时的初始值来源
type Defaults interface {
	Reason() string
	AllowedPaths() []string
	AllowedIPs() []string
	ResponseCode() int
	RetryAfter() string
	RedisKey() string
}

// Record 绑定到单个 Redis 键的维护模式设置
// 非并发安全；跨进程并发写按字段后写者胜出
type Record struct {
	key      string
	client   Client
	settings Settings
}

// Open 以默认值初始化记录，若键已存在则用存储值覆盖
func Open(ctx context.Context, client Client, key string, defaults Defaults) (*Record, error) {
	r := &Record{
		key:    key,
		client: client,
		settings: Settings{
			Reason:       defaults.Reason(),
			AllowedPaths: cloneStrings(defaults.AllowedPaths()),
			AllowedIPs:   cloneStrings(defaults.AllowedIPs()),
			ResponseCode: defaults.ResponseCode(),
			RetryAfter:   defaults.RetryAfter(),
		},
	}

	exists, err := r.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		if err := r.load(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Find 打开默认键的记录，仅当存储中已存在时返回 ok=true
func Find(ctx context.Context, client Client, defaults Defaults) (*Record, bool, error) {
	r, err := Default(ctx, client, defaults)
	if err != nil {
		return nil, false, err
	}
	exists, err := r.Exists(ctx)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	return r, true, nil
}

// Default 无条件打开默认键的记录
func Default(ctx context.Context, client Client, defaults Defaults) (*Record, error) {
	return Open(ctx, client, defaults.RedisKey(), defaults)
}

// Key 返回记录绑定的 Redis 键
func (r *Record) Key() string {
	return r.key
}

// Exists 存储中是否存在该键
func (r *Record) Exists(ctx context.Context) (bool, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Settings 返回当前值的快照
func (r *Record) Settings() Settings {
	s := r.settings
	s.AllowedPaths = cloneStrings(s.AllowedPaths)
	s.AllowedIPs = cloneStrings(s.AllowedIPs)
	return s
}

// AsMap 以字段名为键返回当前值
func (r *Record) AsMap() map[string]any {
	return r.Settings().Map()
}

// Write 将所有存在的字段通过一次 HSET 写入
// 不存在的字段被跳过，已存储的旧值保留
func (r *Record) Write(ctx context.Context) error {
	values, err := r.presentValues()
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.key, values).Err()
}

// Delete 删除整条记录；键不存在时不报错
func (r *Record) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Import 对 values 中每个非 nil 的可识别字段调用对应 setter
// 未出现的字段保持不变，始终返回 true
func (r *Record) Import(values map[string]any) bool {
	for _, field := range Fields {
		v, ok := values[field]
		if !ok || v == nil {
			continue
		}
		switch field {
		case FieldReason:
			r.SetReason(fmt.Sprint(v))
		case FieldAllowedPaths:
			if paths, ok := coerceList(v, SplitAllowedPaths); ok {
				r.SetAllowedPaths(paths)
			}
		case FieldAllowedIPs:
			if ips, ok := coerceList(v, SplitAllowedIPs); ok {
				r.SetAllowedIPs(ips)
			}
		case FieldResponseCode:
			r.SetResponseCode(coerceResponseCode(v))
		case FieldRetryAfter:
			r.SetRetryAfter(coerceRetryAfter(v))
		}
	}
	return true
}

// SetReason 设置维护原因
func (r *Record) SetReason(reason string) {
	r.settings.Reason = reason
}

// SetAllowedPaths 设置豁免路径
func (r *Record) SetAllowedPaths(paths []string) {
	r.settings.AllowedPaths = cloneStrings(paths)
}

// SetAllowedIPs 设置豁免 IP
func (r *Record) SetAllowedIPs(ips []string) {
	r.settings.AllowedIPs = cloneStrings(ips)
}

// SetResponseCode 设置维护期间返回的 HTTP 状态码
func (r *Record) SetResponseCode(code int) {
	r.settings.ResponseCode = code
}

// SetRetryAfter 设置 Retry-After 头的值
func (r *Record) SetRetryAfter(value string) {
	r.settings.RetryAfter = value
}

// load 读取整个 hash 并导入；复合字段先解码
func (r *Record) load(ctx context.Context) error {
	stored, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return err
	}

	values := make(map[string]any, len(stored))
	for field, raw := range stored {
		if !isComposite(field) {
			values[field] = raw
			continue
		}
		items, err := decodeList(field, raw)
		if err != nil {
			return err
		}
		values[field] = items
	}
	r.Import(values)
	return nil
}

// presentValues 仅收集存在（非空）的字段并序列化
func (r *Record) presentValues() (map[string]any, error) {
	s := r.settings
	values := make(map[string]any, len(Fields))

	if presentString(s.Reason) {
		values[FieldReason] = s.Reason
	}
	if len(s.AllowedPaths) > 0 {
		encoded, err := encodeList(s.AllowedPaths)
		if err != nil {
			return nil, err
		}
		values[FieldAllowedPaths] = encoded
	}
	if len(s.AllowedIPs) > 0 {
		encoded, err := encodeList(s.AllowedIPs)
		if err != nil {
			return nil, err
		}
		values[FieldAllowedIPs] = encoded
	}
	// 整数永远视为存在
	values[FieldResponseCode] = strconv.Itoa(s.ResponseCode)
	if presentString(s.RetryAfter) {
		values[FieldRetryAfter] = s.RetryAfter
	}
	return values, nil
}
