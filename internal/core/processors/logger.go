package processors

import (
	"time"

	"go.uber.org/zap"

	"redactproxy/internal/core"
)

// RequestLogger 记录每个代理请求的开始和结束
type RequestLogger struct {
	name     string
	priority int
}

// NewRequestLogger 创建一个新的请求日志处理器
func NewRequestLogger() *RequestLogger {
	return &RequestLogger{
		name:     "request-logger",
		priority: -100, // 必须是第一个执行
	}
}

// Name 返回处理器名称
func (r *RequestLogger) Name() string {
	return r.name
}

// Priority 返回处理器优先级
func (r *RequestLogger) Priority() int {
	return r.priority
}

// OnRequest 记录请求开始
func (r *RequestLogger) OnRequest(ctx *core.ProxyContext, req *core.Request) error {
	// request_id 已经在创建 ctx.Log 时通过 With() 注入
	ctx.Log.Info("Request Started",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("body_bytes", len(req.Body)),
	)
	return nil
}

// OnResponse 记录请求完成
func (r *RequestLogger) OnResponse(ctx *core.ProxyContext, resp *core.Response) error {
	latency := time.Since(ctx.StartTime)

	redacted, _ := ctx.GetMetadata(MetadataRedacted)
	isRedacted, _ := redacted.(bool)

	ctx.Log.Info("Request Finished",
		zap.Duration("latency", latency),
		zap.Int("status", resp.StatusCode),
		zap.Bool("redacted", isRedacted),
	)
	return nil
}
