package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 控制 logger 的构建方式
type Options struct {
	// Level 日志级别 (debug, info, warn, error)，无法识别时使用 info
	Level string
	// Format json 或 console
	Format string
	// Service 写入每条日志的 service 字段，为空则不写
	Service string
}

// Build 按照 Options 创建 logger
func Build(opts Options) (*zap.Logger, error) {
	// 默认使用生产配置（JSON编码）
	config := zap.NewProductionConfig()
	if strings.EqualFold(opts.Format, "console") {
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))

	// lambda 和容器里都只看 stdout
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableCaller = false

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}
	return logger, nil
}

// ParseLevel 解析日志级别，忽略大小写，未知值返回 info
func ParseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
