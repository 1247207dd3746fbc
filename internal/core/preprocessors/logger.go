package preprocessors

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"valgate/internal/core/preprocessing"
)

// RequestLogger 记录预处理开始的日志，总是返回成功
type RequestLogger struct {
	// Fields 是需要记录的 gjson 路径，例如 "model"
	Fields []string
}

// NewRequestLogger 创建一个新的请求日志处理器
func NewRequestLogger(fields ...string) *RequestLogger {
	return &RequestLogger{Fields: fields}
}

func (r *RequestLogger) Name() string {
	return "request-logger"
}

// Process 记录请求信息，不修改 body
func (r *RequestLogger) Process(target any, config preprocessing.Config) (bool, error) {
	req, err := requestOf(r.Name(), target)
	if err != nil {
		return false, err
	}

	var groups []string
	if config != nil {
		for _, g := range config.ValidationGroups() {
			groups = append(groups, string(g))
		}
	}

	// request_id 已经通过 With() 注入，这里不需要重复添加
	fields := []zap.Field{
		zap.Int("size", len(req.Body)),
		zap.Strings("groups", groups),
	}
	for _, path := range r.Fields {
		if v := gjson.GetBytes(req.Body, path); v.Exists() {
			fields = append(fields, zap.String(path, v.String()))
		}
	}

	req.Log.Info("Preprocessing Started", fields...)
	return true, nil
}
