package apigateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"redactproxy/internal/core"
)

// Handler serves one proxied request
type Handler interface {
	Handle(ctx context.Context, req *core.Request) *core.Response
}

// Response builds a proxy integration response. The body is always sent as a
// string; bodies that are not valid UTF-8 are base64 encoded.
func Response(statusCode int, body []byte, headers map[string]string) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "statusCode", statusCode)
	if err != nil {
		return nil, fmt.Errorf("failed to set statusCode: %w", err)
	}

	if utf8.Valid(body) {
		out, err = sjson.SetBytes(out, "body", string(body))
	} else {
		out, err = sjson.SetBytes(out, "body", base64.StdEncoding.EncodeToString(body))
		if err == nil {
			out, err = sjson.SetBytes(out, "isBase64Encoded", true)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set body: %w", err)
	}

	if headers == nil {
		headers = map[string]string{}
	}
	// header 名可能包含 sjson 的路径字符，整体写入
	raw, err := sonic.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headers: %w", err)
	}
	out, err = sjson.SetRawBytes(out, "headers", raw)
	if err != nil {
		return nil, fmt.Errorf("failed to set headers: %w", err)
	}
	return out, nil
}

// FromResponse converts a proxy response, joining repeated headers
func FromResponse(resp *core.Response) ([]byte, error) {
	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = strings.Join(resp.Header.Values(key), ", ")
	}
	return Response(resp.StatusCode, resp.Body, headers)
}

// Error logs reason and returns a 502 Internal Server Error response
func Error(log *zap.Logger, reason string) ([]byte, error) {
	if log != nil {
		log.Error(reason)
	}
	return Response(http.StatusBadGateway, []byte("Internal Server Error"), nil)
}

// Invoke handles one raw event end to end. A malformed event yields an Error
// response rather than a Go error.
func Invoke(ctx context.Context, h Handler, event []byte, log *zap.Logger) ([]byte, error) {
	req, err := ParseEvent(event)
	if err != nil {
		return Error(log, err.Error())
	}
	return FromResponse(h.Handle(ctx, req))
}
