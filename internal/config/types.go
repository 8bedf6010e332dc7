package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "500ms"、"5s" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为，所有 Provider 共享同一份参数。
type GlobalConfig struct {
	ListenPort    int      `mapstructure:"ListenPort"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFormat     string   `mapstructure:"LogFormat"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	CacheSize     int      `mapstructure:"CacheSize"`
	CheckInterval Duration `mapstructure:"CheckInterval"`
}

// ProviderConfig 把一个文件系统目录挂载到逻辑根路径下。
type ProviderConfig struct {
	Name                  string   `mapstructure:"Name"`
	Root                  string   `mapstructure:"Root"`
	File                  string   `mapstructure:"File"`
	Mode                  string   `mapstructure:"Mode"`
	CacheSize             int      `mapstructure:"CacheSize"`
	CheckInterval         Duration `mapstructure:"CheckInterval"`
	IgnoreImportProviders []string `mapstructure:"IgnoreImportProviders"`
	// Ignore 为相对 File 目录的 glob 列表，命中的路径不映射、不监控。
	Ignore []string `mapstructure:"Ignore"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global    GlobalConfig     `mapstructure:",squash"`
	Providers []ProviderConfig `mapstructure:"Provider"`
}

// ContentEnabled 表示该 Provider 是否解析内容文件。
func (p ProviderConfig) ContentEnabled() bool {
	mode, err := parseMode(p.Mode)
	return err == nil && mode == ModeInitialContent
}

// ProviderRoots 返回所有 Provider 的挂载摘要，例如 apps:/apps，供启动日志使用。
func ProviderRoots(providers []ProviderConfig) []string {
	if len(providers) == 0 {
		return nil
	}
	result := make([]string, len(providers))
	for i, p := range providers {
		result[i] = fmt.Sprintf("%s:%s", p.Name, p.Root)
	}
	return result
}
