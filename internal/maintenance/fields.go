package maintenance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 存储中 hash 子字段的名称，顺序即声明顺序
const (
	FieldReason       = "reason"
	FieldAllowedPaths = "allowed_paths"
	FieldAllowedIPs   = "allowed_ips"
	FieldResponseCode = "response_code"
	FieldRetryAfter   = "retry_after"
)

// Fields 所有可识别的设置项（仅这五项会被持久化或导入）
var Fields = []string{
	FieldReason,
	FieldAllowedPaths,
	FieldAllowedIPs,
	FieldResponseCode,
	FieldRetryAfter,
}

// isComposite 复合字段使用结构化编码存储，其余为纯文本
func isComposite(field string) bool {
	return field == FieldAllowedPaths || field == FieldAllowedIPs
}

// Settings 维护模式设置快照（JSON 字段顺序与声明顺序一致）
type Settings struct {
	Reason       string   `json:"reason"`
	AllowedPaths []string `json:"allowed_paths"`
	AllowedIPs   []string `json:"allowed_ips"`
	ResponseCode int      `json:"response_code"`
	RetryAfter   string   `json:"retry_after"`
}

// Map 以字段名为键返回快照
func (s Settings) Map() map[string]any {
	return map[string]any{
		FieldReason:       s.Reason,
		FieldAllowedPaths: s.AllowedPaths,
		FieldAllowedIPs:   s.AllowedIPs,
		FieldResponseCode: s.ResponseCode,
		FieldRetryAfter:   s.RetryAfter,
	}
}

// SplitAllowedPaths 按未转义的逗号拆分路径列表
// 分隔符为逗号加可选的一个空格；"\," 视为字面逗号。
// 元素去除首尾空白，末尾的空片段被丢弃。
func SplitAllowedPaths(raw string) []string {
	var pieces []string
	var cur strings.Builder
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == ',' && (i == 0 || raw[i-1] != '\\') {
			pieces = append(pieces, cur.String())
			cur.Reset()
			if i+1 < len(raw) && raw[i+1] == ' ' {
				i++
			}
			continue
		}
		cur.WriteByte(ch)
	}
	pieces = append(pieces, cur.String())
	pieces = dropTrailingEmpty(pieces)

	paths := make([]string, 0, len(pieces))
	for _, p := range pieces {
		paths = append(paths, strings.ReplaceAll(strings.TrimSpace(p), `\,`, ","))
	}
	return paths
}

// SplitAllowedIPs 按逗号无条件拆分 IP 列表（不支持转义，不去空白）
func SplitAllowedIPs(raw string) []string {
	return dropTrailingEmpty(strings.Split(raw, ","))
}

func dropTrailingEmpty(pieces []string) []string {
	n := len(pieces)
	for n > 0 && pieces[n-1] == "" {
		n--
	}
	return pieces[:n]
}

// ParseResponseCode 宽松解析整数：忽略前导空白，可选符号，读取前导数字
// （数字间的下划线忽略）。无数字或溢出时返回 0。
func ParseResponseCode(raw string) int {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var digits strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			digits.WriteByte(ch)
			continue
		}
		if ch == '_' && digits.Len() > 0 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			continue
		}
		break
	}
	if digits.Len() == 0 {
		return 0
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// coerceResponseCode 将任意输入转换为整数，无法转换时为 0
func coerceResponseCode(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case string:
		return ParseResponseCode(x)
	case []byte:
		return ParseResponseCode(string(x))
	case fmt.Stringer:
		return ParseResponseCode(x.String())
	default:
		return 0
	}
}

// coerceRetryAfter 字符串原样保留，数值按十进制格式化
func coerceRetryAfter(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// coerceList 字符串按 split 拆分，序列逐项转为字符串；其他类型返回 nil, false
func coerceList(v any, split func(string) []string) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return split(x), true
	case []string:
		return cloneStrings(x), true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}

func presentString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// cloneStrings 复制切片，空输入返回非 nil 的空切片
func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
