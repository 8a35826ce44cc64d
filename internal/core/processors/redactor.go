package processors

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"redactproxy/internal/core"
)

// MetadataRedacted is set on the context once a response body has been filtered
const MetadataRedacted = "redacted"

// Redactor removes configured fields from successful JSON responses
type Redactor struct{}

// NewRedactor creates a new redaction processor
func NewRedactor() *Redactor {
	return &Redactor{}
}

// Name returns the processor name
func (r *Redactor) Name() string {
	return "redactor"
}

// Priority returns the execution priority
func (r *Redactor) Priority() int {
	return 100
}

// OnRequest leaves the request alone
func (r *Redactor) OnRequest(ctx *core.ProxyContext, req *core.Request) error {
	return nil
}

// OnResponse filters 2xx and 3xx JSON bodies with the rules on the context
func (r *Redactor) OnResponse(ctx *core.ProxyContext, resp *core.Response) error {
	if ctx.Filter == nil || ctx.Request == nil {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest || !resp.IsJSON() {
		return nil
	}

	method, path := ctx.Request.Method, ctx.Request.Path
	pattern, params, ok := ctx.Filter.Lookup(method, path)
	if !ok {
		return nil
	}

	// A body that is not valid JSON is treated as a plain string value: rules
	// cannot resolve against it, which only matters with errorOnMissingKey.
	if !sonic.Valid(resp.Body) {
		if _, err := ctx.Filter.FilterResult(method, path, string(resp.Body)); err != nil {
			return fmt.Errorf("failed to redact response: %w", err)
		}
		return nil
	}

	body, err := ctx.Filter.FilterJSON(method, path, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to redact response: %w", err)
	}

	resp.Body = body
	ctx.SetMetadata(MetadataRedacted, true)
	ctx.Log.Debug("Response redacted",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("rule", pattern),
		zap.Any("params", params),
	)
	return nil
}
