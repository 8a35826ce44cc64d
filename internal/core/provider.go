package core

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Request is an inbound call in transport-independent form
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is what the proxy returns to its caller
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsJSON reports whether the response declares a JSON body
func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

// Provider forwards a request to the downstream service
type Provider interface {
	// ID returns the unique identifier for this provider
	ID() string
	// Forward sends req to baseURL+req.Path and returns the downstream response.
	// Any HTTP status is a response, not an error.
	Forward(ctx context.Context, baseURL string, req *Request) (*Response, error)
}
