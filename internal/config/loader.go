package config

import (
	"fmt"
	"path"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectProviderLevelPorts(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Providers {
		applyProviderDefaults(&cfg.Providers[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// File 相对于配置文件所在目录解析，避免依赖启动时的工作目录。
	baseDir := filepath.Dir(configPath)
	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		file := p.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("无法解析 %s: %w", providerField(p.Name, "File"), err)
		}
		p.File = abs
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "json")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheSize", 10000)
	v.SetDefault("CheckInterval", "1s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
}

func applyProviderDefaults(p *ProviderConfig) {
	p.Name = strings.TrimSpace(p.Name)
	if root := strings.TrimSpace(p.Root); root != "" {
		p.Root = path.Clean("/" + root)
	}
	p.File = strings.TrimSpace(p.File)
	if mode := strings.TrimSpace(p.Mode); mode != "" {
		p.Mode = strings.ToLower(mode)
	} else {
		p.Mode = string(ModeInitialContent)
	}
	for i, raw := range p.IgnoreImportProviders {
		p.IgnoreImportProviders[i] = strings.ToLower(strings.TrimSpace(raw))
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectProviderLevelPorts 拒绝 Provider 内的端口字段，所有 Provider 共用全局 ListenPort。
func rejectProviderLevelPorts(v *viper.Viper) error {
	raw := v.Get("Provider")
	providers, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range providers {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		// viper 读入后键名已转为小写。
		for key := range m {
			if !strings.EqualFold(key, "Port") && !strings.EqualFold(key, "ListenPort") {
				continue
			}
			name := fmt.Sprintf("#%d", idx)
			if rawName, ok := lookupFold(m, "Name").(string); ok && rawName != "" {
				name = rawName
			}
			return newFieldError(providerField(name, "Port"), "字段不受支持，请使用全局 ListenPort")
		}
	}

	return nil
}

func lookupFold(m map[string]interface{}, key string) interface{} {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}
