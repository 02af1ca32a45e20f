// Package version 提供应用版本信息
package version

// 构建信息变量，通过 ldflags 注入
// 构建命令示例:
//
//	go build -ldflags "-X maintkv/internal/version.Version=$(git describe --tags --always) \
//	  -X maintkv/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X 'maintkv/internal/version.BuildTime=$(date +%Y-%m-%d\ %H:%M:%S\ %z)'"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)
