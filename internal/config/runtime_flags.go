package config

import (
	"fmt"
	"strings"
)

// Mode 决定 Provider 暴露文件系统的方式：
// - initial-content：内容文件（.json/.yaml）被解析为资源树，文件本身隐藏；
// - files-folders：只暴露普通文件与目录，内容文件按普通文件处理。
type Mode string

const (
	ModeInitialContent Mode = "initial-content"
	ModeFilesFolders   Mode = "files-folders"
)

// parseMode 将配置中的 Mode 字段标准化，留空时默认 initial-content。
func parseMode(raw string) (Mode, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "":
		return ModeInitialContent, nil
	case string(ModeInitialContent):
		return ModeInitialContent, nil
	case string(ModeFilesFolders):
		return ModeFilesFolders, nil
	default:
		return "", fmt.Errorf("不支持的 Mode 值: %s", raw)
	}
}
