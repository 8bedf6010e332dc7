package config

import (
	"time"

	"github.com/any-hub/fsprovider/internal/content"
	"github.com/any-hub/fsprovider/internal/ignorefs"
	"github.com/any-hub/fsprovider/internal/parser"
)

// MinCheckInterval 及以下的检查间隔表示关闭文件监控。
const MinCheckInterval = 100 * time.Millisecond

// ProviderRuntime 将 Provider 配置与全局默认值合并，方便运行时直接取用。
type ProviderRuntime struct {
	Config        ProviderConfig
	CacheSize     int
	CheckInterval time.Duration
	// Suffixes 为参与解析的内容文件后缀；files-folders 模式下为空。
	Suffixes []string
	// Ignore 为空表示不过滤。
	Ignore *ignorefs.Matcher
}

// MonitorEnabled 表示是否需要启动轮询监控。
func (r ProviderRuntime) MonitorEnabled() bool {
	return r.CheckInterval > MinCheckInterval
}

// BuildProviderRuntime 应用缓存容量、检查间隔与格式过滤的最终取值。
func (c *Config) BuildProviderRuntime(p ProviderConfig) ProviderRuntime {
	rt := ProviderRuntime{
		Config:        p,
		CacheSize:     c.EffectiveCacheSize(p),
		CheckInterval: c.EffectiveCheckInterval(p),
	}
	if p.ContentEnabled() {
		rt.Suffixes = parser.Suffixes(p.IgnoredTypes()...)
	}
	// Validate 已保证模式可编译。
	rt.Ignore, _ = ignorefs.Compile(p.Ignore)
	return rt
}

// IgnoredTypes 把 IgnoreImportProviders 转成内容类型列表。
func (p ProviderConfig) IgnoredTypes() []content.Type {
	if len(p.IgnoreImportProviders) == 0 {
		return nil
	}
	out := make([]content.Type, 0, len(p.IgnoreImportProviders))
	for _, raw := range p.IgnoreImportProviders {
		out = append(out, content.Type(raw).Normalize())
	}
	return out
}
