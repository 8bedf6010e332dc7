package config

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/any-hub/fsprovider/internal/content"
	"github.com/any-hub/fsprovider/internal/ignorefs"
	"github.com/any-hub/fsprovider/internal/parser"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	switch strings.ToLower(strings.TrimSpace(g.LogFormat)) {
	case "", "json", "text":
	default:
		return newFieldError("Global.LogFormat", "仅支持 json/text")
	}
	if g.CheckInterval.DurationValue() < 0 {
		return newFieldError("Global.CheckInterval", "不能为负数")
	}

	if len(c.Providers) == 0 {
		return errors.New("至少需要配置一个 Provider")
	}

	seenNames := map[string]struct{}{}
	seenRoots := map[string]string{}
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Name == "" {
			return newFieldError("Provider[].Name", "不能为空")
		}
		if _, exists := seenNames[p.Name]; exists {
			return newFieldError(providerField(p.Name, "Name"), "重复")
		}
		seenNames[p.Name] = struct{}{}

		if err := validateRoot(p.Root); err != nil {
			return fmt.Errorf("%s: %w", providerField(p.Name, "Root"), err)
		}
		if owner, exists := seenRoots[p.Root]; exists {
			return newFieldError(providerField(p.Name, "Root"), fmt.Sprintf("与 %s 重复", owner))
		}
		seenRoots[p.Root] = p.Name

		if strings.TrimSpace(p.File) == "" {
			return newFieldError(providerField(p.Name, "File"), "不能为空")
		}

		mode, err := parseMode(p.Mode)
		if err != nil {
			return newFieldError(providerField(p.Name, "Mode"), "仅支持 initial-content/files-folders")
		}
		p.Mode = string(mode)

		if p.CheckInterval.DurationValue() < 0 {
			return newFieldError(providerField(p.Name, "CheckInterval"), "不能为负数")
		}
		for _, raw := range p.IgnoreImportProviders {
			typ := content.Type(raw).Normalize()
			if _, ok := parser.Resolve(typ); !ok || typ == content.TypeAuto {
				return newFieldError(providerField(p.Name, "IgnoreImportProviders"), fmt.Sprintf("未注册格式: %s", raw))
			}
		}
		if _, err := ignorefs.Compile(p.Ignore); err != nil {
			return newFieldError(providerField(p.Name, "Ignore"), err.Error())
		}
	}

	return nil
}

func validateRoot(root string) error {
	if root == "" {
		return errors.New("Root 不能为空")
	}
	if !strings.HasPrefix(root, "/") {
		return errors.New("Root 必须为绝对路径")
	}
	if strings.Contains(root, " ") {
		return errors.New("Root 不允许包含空格")
	}
	if path.Clean(root) != root {
		return fmt.Errorf("Root 应为规范路径: %s", path.Clean(root))
	}
	return nil
}

// EffectiveCacheSize 返回特定 Provider 生效的缓存容量，0 表示沿用全局值，负数表示关闭缓存。
func (c *Config) EffectiveCacheSize(p ProviderConfig) int {
	switch {
	case p.CacheSize > 0:
		return p.CacheSize
	case p.CacheSize < 0:
		return 0
	case c.Global.CacheSize > 0:
		return c.Global.CacheSize
	default:
		return 0
	}
}

// EffectiveCheckInterval 返回特定 Provider 生效的检查间隔，未覆盖时回退至全局值。
func (c *Config) EffectiveCheckInterval(p ProviderConfig) time.Duration {
	if p.CheckInterval.DurationValue() > 0 {
		return p.CheckInterval.DurationValue()
	}
	return c.Global.CheckInterval.DurationValue()
}
