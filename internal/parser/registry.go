package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/any-hub/fsprovider/internal/content"
)

// DecodeFunc 将原始字节解析为以 name 命名、来源为 source 的根节点。
type DecodeFunc func(data []byte, name, source string) (*content.Element, error)

// Format 描述一种内容文件格式及其后缀。
type Format struct {
	Type        content.Type
	Description string
	Suffixes    []string
	Decode      DecodeFunc
}

var globalRegistry = newRegistry()

type registry struct {
	mu      sync.RWMutex
	formats map[content.Type]Format
}

func newRegistry() *registry {
	return &registry{formats: make(map[content.Type]Format)}
}

// Register 将格式加入全局注册表，重复类型会返回错误。
func Register(format Format) error {
	return globalRegistry.register(format)
}

// MustRegister 在注册失败时 panic，适合在 init() 中调用。
func MustRegister(format Format) {
	if err := Register(format); err != nil {
		panic(err)
	}
}

// Resolve 返回指定类型的格式定义。
func Resolve(t content.Type) (Format, bool) {
	return globalRegistry.resolve(t)
}

// ForFile 按最长后缀匹配文件名对应的格式。
func ForFile(name string) (Format, bool) {
	return globalRegistry.forFile(name)
}

// List 返回按类型排序的格式列表。
func List() []Format {
	return globalRegistry.list()
}

// Suffixes 返回未被 ignore 排除的全部后缀，按长度降序，便于最长匹配。
func Suffixes(ignore ...content.Type) []string {
	skip := make(map[content.Type]struct{}, len(ignore))
	for _, t := range ignore {
		skip[t.Normalize()] = struct{}{}
	}
	var out []string
	for _, format := range List() {
		if _, ok := skip[format.Type]; ok {
			continue
		}
		out = append(out, format.Suffixes...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) > len(out[j])
	})
	return out
}

func (r *registry) register(format Format) error {
	key := format.Type.Normalize()
	if key == content.TypeAuto {
		return fmt.Errorf("format type is required")
	}
	if format.Decode == nil {
		return fmt.Errorf("format %s has no decoder", key)
	}
	if len(format.Suffixes) == 0 {
		return fmt.Errorf("format %s has no suffixes", key)
	}
	format.Type = key
	suffixes := make([]string, 0, len(format.Suffixes))
	for _, suffix := range format.Suffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		suffixes = append(suffixes, suffix)
	}
	format.Suffixes = suffixes

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formats[key]; exists {
		return fmt.Errorf("format %s already registered", key)
	}
	for existingKey, existing := range r.formats {
		for _, suffix := range existing.Suffixes {
			for _, candidate := range suffixes {
				if suffix == candidate {
					return fmt.Errorf("suffix %s already claimed by %s", suffix, existingKey)
				}
			}
		}
	}
	r.formats[key] = format
	return nil
}

func (r *registry) resolve(t content.Type) (Format, bool) {
	key := t.Normalize()
	if key == content.TypeAuto {
		return Format{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	format, ok := r.formats[key]
	return format, ok
}

func (r *registry) forFile(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best    Format
		bestLen int
	)
	for _, format := range r.formats {
		for _, suffix := range format.Suffixes {
			if len(suffix) > bestLen && len(name) > len(suffix) && strings.HasSuffix(name, suffix) {
				best, bestLen = format, len(suffix)
			}
		}
	}
	return best, bestLen > 0
}

func (r *registry) list() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.formats) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.formats))
	for key := range r.formats {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	result := make([]Format, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.formats[content.Type(key)])
	}
	return result
}
