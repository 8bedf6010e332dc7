package content

import (
	"strings"
	"time"
)

// Type 标识内容文件格式，TypeAuto 表示由解析器按文件后缀自动识别。
type Type string

const (
	TypeAuto Type = ""
	TypeJSON Type = "json"
	TypeYAML Type = "yaml"
)

// Normalize 将配置或查询参数中的格式名统一为小写并去除空白。
func (t Type) Normalize() Type {
	return Type(strings.ToLower(strings.TrimSpace(string(t))))
}

// Binary 表示二进制属性，仅记录相对内容文件的引用路径，不在内存中持有数据。
type Binary struct {
	Path string `json:"path"`
}

// IsValue 判断 v 是否属于内容模型支持的属性类型。
func IsValue(v any) bool {
	switch val := v.(type) {
	case string, int64, float64, bool, time.Time, Binary:
		return true
	case []any:
		for _, item := range val {
			if !IsValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
