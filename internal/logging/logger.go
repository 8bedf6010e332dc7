package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/any-hub/fsprovider/internal/config"
)

// InitLogger 按 Global 配置构造进程级 logger，并同步到 logrus 标准实例。
// 日志文件不可写时退回 stdout，并记录一条 logger_fallback 警告。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}
	formatter, err := newFormatter(cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	out, fallbackErr := openOutput(cfg)
	if fallbackErr != nil {
		fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", fallbackErr)
	}

	logger := &logrus.Logger{
		Out:       out,
		Formatter: formatter,
		Hooks:     make(logrus.LevelHooks),
		Level:     level,
		ExitFunc:  os.Exit,
	}
	logrus.SetFormatter(formatter)
	logrus.SetOutput(out)
	logrus.SetLevel(level)

	if fallbackErr != nil {
		logger.WithFields(logrus.Fields{
			"action": "logger_fallback",
			"path":   cfg.LogFilePath,
		}).Warn(fallbackErr.Error())
	}
	return logger, nil
}

// newFormatter 空值视为 json。
func newFormatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}, nil
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339Nano}, nil
	default:
		return nil, fmt.Errorf("不支持的日志格式: %s", format)
	}
}

// openOutput 返回 lumberjack 轮转文件；目录无法创建时返回 stdout 与原因。
func openOutput(cfg config.GlobalConfig) (io.Writer, error) {
	if cfg.LogFilePath == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return os.Stdout, fmt.Errorf("创建日志目录失败: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, nil
}
