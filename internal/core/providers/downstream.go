package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"redactproxy/internal/core"
)

// HTTPDoer is the part of *http.Client the provider needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// 转发前从入站请求中删除的 header
var defaultRemoveHeaders = []string{"Host", "Accept-Encoding"}

// Downstream forwards proxied requests to the configured base URL
type Downstream struct {
	client        HTTPDoer
	removeHeaders []string
	log           *zap.Logger
}

// DownstreamOption configures a Downstream provider
type DownstreamOption func(*Downstream)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client HTTPDoer) DownstreamOption {
	return func(d *Downstream) {
		if client != nil {
			d.client = client
		}
	}
}

// NewDownstream creates a provider whose requests time out after timeout
func NewDownstream(timeout time.Duration, log *zap.Logger, opts ...DownstreamOption) *Downstream {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Downstream{
		client:        &http.Client{Timeout: timeout},
		removeHeaders: defaultRemoveHeaders,
		log:           log.Named("downstream"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ID returns the provider identifier
func (d *Downstream) ID() string {
	return "downstream"
}

// Forward sends req to baseURL+req.Path. Non-2xx statuses are returned as
// responses; only transport failures are errors.
func (d *Downstream) Forward(ctx context.Context, baseURL string, req *core.Request) (*core.Response, error) {
	target, err := buildURL(baseURL, req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = d.buildHeaders(req.Header)

	d.log.Debug("Calling downstream",
		zap.String("method", req.Method),
		zap.String("url", target),
	)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &core.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
	}, nil
}

// buildHeaders copies the inbound headers minus the removed ones
func (d *Downstream) buildHeaders(in http.Header) http.Header {
	out := in.Clone()
	if out == nil {
		out = make(http.Header)
	}
	for _, name := range d.removeHeaders {
		out.Del(name)
	}
	return out
}

// buildURL joins base URL and path as-is and appends the query parameters
func buildURL(baseURL, path string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid downstream url %q: %w", baseURL+path, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
