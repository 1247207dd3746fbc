package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	// Level: debug, info, warn, error；无法识别时使用 info
	Level string `mapstructure:"level"`
	// Format: json (默认) 或 console
	Format string `mapstructure:"format"`
	// Output: stdout (默认), stderr 或文件路径
	Output string `mapstructure:"output"`
}

// New 创建一个 JSON 格式、输出到 stdout 的 zap logger
func New(level string) (*zap.Logger, error) {
	return NewWithConfig(Config{Level: level})
}

// NewWithConfig 根据配置创建 zap logger
func NewWithConfig(cfg Config) (*zap.Logger, error) {
	// 使用生产配置
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))

	switch cfg.Format {
	case "", "json":
		config.Encoding = "json"
	case "console":
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{"stderr"}

	// 自定义时间格式
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableCaller = false

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil || level == "" {
		return zapcore.InfoLevel
	}
	return l
}
