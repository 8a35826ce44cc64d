package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redactproxy/internal/core/filter"
)

// RequestIDHeader carries the request id in and out of the proxy
const RequestIDHeader = "X-Request-Id"

// ProxyContext extends standard context with proxy-specific fields
type ProxyContext struct {
	context.Context
	RequestID string
	StartTime time.Time
	Log       *zap.Logger
	Request   *Request
	// Filter holds the redaction rules of the configuration snapshot in use
	Filter *filter.ResponseFilter

	mu       sync.RWMutex
	metadata map[string]interface{}
}

// NewProxyContext creates a ProxyContext for req. The request id is taken from
// the X-Request-Id header when present, otherwise a new one is generated.
func NewProxyContext(ctx context.Context, logger *zap.Logger, req *Request) *ProxyContext {
	if logger == nil {
		logger = zap.NewNop()
	}

	requestID := ""
	if req != nil && req.Header != nil {
		requestID = req.Header.Get(RequestIDHeader)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return &ProxyContext{
		Context:   ctx,
		RequestID: requestID,
		StartTime: time.Now(),
		Log:       logger.With(zap.String("request_id", requestID)),
		Request:   req,
		metadata:  make(map[string]interface{}),
	}
}

// SetMetadata sets a metadata value (thread-safe)
func (c *ProxyContext) SetMetadata(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
}

// GetMetadata gets a metadata value (thread-safe)
func (c *ProxyContext) GetMetadata(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.metadata[key]
	return v, ok
}
