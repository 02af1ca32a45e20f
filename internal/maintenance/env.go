package maintenance

import "strings"

// EnvValues 从 KEY=VALUE 形式的环境列表中挑出可识别的设置项
// 键名为小写字段名，例如: reason="Upgrading" allowed_ips=10.0.0.1,10.0.0.2
// 结果可直接传给 Import；空值视为未提供
func EnvValues(environ []string) map[string]any {
	values := make(map[string]any)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		for _, field := range Fields {
			if name == field {
				values[field] = value
				break
			}
		}
	}
	return values
}
