package core

// Processor is the middleware interface for the proxy pipeline
type Processor interface {
	// Name returns the processor name
	Name() string
	// Priority returns the execution priority (lower = earlier)
	Priority() int
	// OnRequest is called before the request is forwarded downstream
	OnRequest(ctx *ProxyContext, req *Request) error
	// OnResponse is called after the downstream response is received
	OnResponse(ctx *ProxyContext, resp *Response) error
}
