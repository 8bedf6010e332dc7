package ignorefs

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

const maxPatternLength = 256

// Matcher 持有预编译的 glob，按相对路径及其每一级祖先匹配。
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// Compile 编译 ignore 模式；`*` 不跨越 `/`，`**` 可跨目录。
// 空列表返回 nil Matcher，nil Matcher 不匹配任何路径。
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if len(pattern) > maxPatternLength {
			return nil, fmt.Errorf("ignore pattern too long: %d > %d", len(pattern), maxPatternLength)
		}
		g, err := glob.Compile(strings.TrimPrefix(pattern, "/"), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		m.patterns = append(m.patterns, pattern)
		m.globs = append(m.globs, g)
	}
	if len(m.globs) == 0 {
		return nil, nil
	}
	return m, nil
}

// Patterns 返回生效的模式，供诊断输出。
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

// Match 判断 name 或其任一祖先目录是否被忽略。
// 模式同时与完整相对路径和末级名称比较，因此 ".git" 可以隐藏任意层级的 .git 目录。
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	for rel := clean(name); rel != ""; rel = parent(rel) {
		base := path.Base(rel)
		for _, g := range m.globs {
			if g.Match(rel) || g.Match(base) {
				return true
			}
		}
	}
	return false
}

func clean(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Trim(path.Clean("/"+name), "/")
	return name
}

func parent(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
