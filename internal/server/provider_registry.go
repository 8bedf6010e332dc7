package server

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/any-hub/fsprovider/internal/provider"
)

// ProviderRegistry 提供逻辑路径到 Provider 的查询能力，所有 Provider 共享同一个监听端口。
type ProviderRegistry struct {
	routes  map[string]*provider.Provider
	ordered []*provider.Provider
}

// NewProviderRegistry 根据已激活的 Provider 构建挂载点映射。调用方应在启动阶段创建一次并复用。
func NewProviderRegistry(providers []*provider.Provider) (*ProviderRegistry, error) {
	registry := &ProviderRegistry{
		routes: make(map[string]*provider.Provider, len(providers)),
	}

	for _, p := range providers {
		if p == nil {
			return nil, errors.New("provider is nil")
		}
		root := p.Root()
		if _, exists := registry.routes[root]; exists {
			return nil, fmt.Errorf("duplicate provider root detected for %s", root)
		}
		registry.routes[root] = p
		registry.ordered = append(registry.ordered, p)
	}

	return registry, nil
}

// Lookup 按最长前缀匹配查找挂载了 resourcePath 的 Provider。
func (r *ProviderRegistry) Lookup(resourcePath string) (*provider.Provider, bool) {
	if r == nil || len(r.routes) == 0 {
		return nil, false
	}

	candidate := normalizePath(resourcePath)
	for {
		if p, ok := r.routes[candidate]; ok {
			return p, true
		}
		if candidate == "/" {
			return nil, false
		}
		candidate = path.Dir(candidate)
	}
}

// List 返回当前注册的 Provider 列表（按配置定义的顺序），用于调试或 /-/providers 输出。
func (r *ProviderRegistry) List() []*provider.Provider {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}
	return append([]*provider.Provider(nil), r.ordered...)
}

func normalizePath(raw string) string {
	return path.Clean("/" + strings.TrimSpace(raw))
}
