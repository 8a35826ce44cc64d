package server

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"redactproxy/internal/config"
	"redactproxy/internal/core"
	"redactproxy/internal/core/filter"
	"redactproxy/internal/core/processors"
)

// Response bodies for failures the caller is not told more about
const (
	BodyInternalError = "Internal Server Error"
	BodyUnknownError  = "Unknown Error"
)

// 不转发给调用方的 hop-by-hop header，body 可能已被重写
var droppedResponseHeaders = []string{"Content-Length", "Transfer-Encoding", "Connection"}

// ConfigLoader returns the current validated application configuration
type ConfigLoader interface {
	Load(ctx context.Context) (*config.ApplicationConfig, error)
}

// Gateway forwards requests downstream and redacts the responses
type Gateway struct {
	loader   ConfigLoader
	provider core.Provider
	pipeline *core.Pipeline
	log      *zap.Logger

	// 同一个配置快照只编译一次规则
	mu           sync.Mutex
	filterConfig *config.ApplicationConfig
	filter       *filter.ResponseFilter
}

// NewGateway creates a gateway with the request logger and redactor registered
func NewGateway(loader ConfigLoader, provider core.Provider, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}

	pipeline := core.NewPipeline()
	pipeline.AddProcessor(processors.NewRequestLogger())
	pipeline.AddProcessor(processors.NewRedactor())

	return &Gateway{
		loader:   loader,
		provider: provider,
		pipeline: pipeline,
		log:      log,
	}
}

// Handle runs one request through the proxy. It always returns a response;
// failures become 502s.
func (g *Gateway) Handle(ctx context.Context, req *core.Request) *core.Response {
	pctx := core.NewProxyContext(ctx, g.log, req)

	if err := g.pipeline.ExecuteRequest(pctx, req); err != nil {
		return g.fail(pctx, BodyInternalError, "request pipeline failed", err)
	}

	cfg, err := g.loader.Load(pctx)
	if err != nil {
		return g.fail(pctx, BodyInternalError, "failed to load application config", err)
	}

	f, err := g.filterFor(cfg)
	if err != nil {
		return g.fail(pctx, BodyInternalError, "invalid filter rules", err)
	}
	pctx.Filter = f

	pctx.Log.Debug("Calling downstream",
		zap.String("provider", g.provider.ID()),
		zap.String("base_url", cfg.BaseURL),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
	)

	resp, err := g.provider.Forward(pctx, cfg.BaseURL, req)
	if err != nil {
		return g.fail(pctx, BodyUnknownError, "downstream request failed", err)
	}

	if err := g.pipeline.ExecuteResponse(pctx, resp); err != nil {
		return g.fail(pctx, BodyInternalError, "failed to redact response", err)
	}

	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	for _, name := range droppedResponseHeaders {
		resp.Header.Del(name)
	}
	resp.Header.Set(core.RequestIDHeader, pctx.RequestID)
	return resp
}

func (g *Gateway) filterFor(cfg *config.ApplicationConfig) (*filter.ResponseFilter, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.filterConfig == cfg && g.filter != nil {
		return g.filter, nil
	}

	f, err := cfg.NewResponseFilter()
	if err != nil {
		return nil, err
	}
	g.filterConfig = cfg
	g.filter = f
	return f, nil
}

func (g *Gateway) fail(pctx *core.ProxyContext, body, reason string, err error) *core.Response {
	pctx.Log.Error(reason, zap.Error(err))

	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set(core.RequestIDHeader, pctx.RequestID)
	return &core.Response{
		StatusCode: http.StatusBadGateway,
		Header:     header,
		Body:       []byte(body),
	}
}
