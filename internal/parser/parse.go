package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/any-hub/fsprovider/internal/content"
)

// ErrUnsupportedType 表示文件既无可识别后缀，也未提供有效的格式提示。
var ErrUnsupportedType = errors.New("unsupported content type")

// Parse 读取 fsys 中的 file 并解析为 Element。hint 为 TypeAuto 时按后缀自动识别。
// 文件不存在返回 (nil, nil)；读取或解析失败返回 error。
func Parse(fsys billy.Filesystem, file string, hint content.Type) (*content.Element, error) {
	format, err := formatFor(file, hint)
	if err != nil {
		return nil, err
	}

	data, err := util.ReadFile(fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", file, err)
	}

	elem, err := format.Decode(data, elementName(file, format), fsys.Join(fsys.Root(), file))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	return elem, nil
}

// NewLoader 把 Parse 绑定到 fsys，签名与 cache.Loader 一致。
func NewLoader(fsys billy.Filesystem) func(file string, hint content.Type) (*content.Element, error) {
	return func(file string, hint content.Type) (*content.Element, error) {
		return Parse(fsys, file, hint)
	}
}

// NameFromFile 去掉内容文件后缀，"page.json" 返回 "page"；无法识别时返回原文件名。
func NameFromFile(file string) string {
	format, ok := ForFile(file)
	if !ok {
		return path.Base(file)
	}
	return elementName(file, format)
}

func formatFor(file string, hint content.Type) (Format, error) {
	if hint.Normalize() != content.TypeAuto {
		format, ok := Resolve(hint)
		if !ok {
			return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedType, hint)
		}
		return format, nil
	}
	format, ok := ForFile(file)
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedType, file)
	}
	return format, nil
}

func elementName(file string, format Format) string {
	base := path.Base(file)
	for _, suffix := range format.Suffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}
