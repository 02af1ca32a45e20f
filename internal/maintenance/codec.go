package maintenance

import (
	"fmt"

	"github.com/bytedance/sonic"

	apperrors "maintkv/internal/errors"
)

// listEncodingVersion 复合字段编码版本号
const listEncodingVersion = 1

// listEnvelope 复合字段在 Redis 中的存储格式: {"v":1,"items":[...]}
// 任何语言的客户端都能读写，不依赖特定运行时的对象序列化格式
type listEnvelope struct {
	Version int      `json:"v"`
	Items   []string `json:"items"`
}

// encodeList 序列化字符串序列
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := sonic.Marshal(listEnvelope{Version: listEncodingVersion, Items: items})
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

// decodeList 反序列化字符串序列，版本不匹配或格式错误时返回 DECODE 错误
func decodeList(field, raw string) ([]string, error) {
	var env listEnvelope
	if err := sonic.UnmarshalString(raw, &env); err != nil {
		return nil, apperrors.DecodeError(field, err)
	}
	if env.Version != listEncodingVersion {
		return nil, apperrors.DecodeError(field, fmt.Errorf("unsupported encoding version %d", env.Version))
	}
	if env.Items == nil {
		return []string{}, nil
	}
	return env.Items, nil
}
