// Package apigateway translates API Gateway REST proxy events and responses
package apigateway

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"redactproxy/internal/core"
)

// ErrInvalidEvent is returned for input that is not a proxy event
var ErrInvalidEvent = errors.New("invalid API Gateway proxy event")

// ParseEvent reads a REST API proxy integration event into a core.Request.
// Multi-value query strings and headers win over their single-value forms.
func ParseEvent(data []byte) (*core.Request, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidEvent)
	}
	event := gjson.ParseBytes(data)
	if !event.IsObject() {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidEvent)
	}

	method := event.Get("httpMethod").String()
	if method == "" {
		return nil, fmt.Errorf("%w: missing httpMethod", ErrInvalidEvent)
	}
	path := event.Get("path").String()
	if path == "" {
		path = "/"
	}

	req := &core.Request{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Header: http.Header{},
	}

	readValues(event, "queryStringParameters", "multiValueQueryStringParameters", func(k, v string) {
		req.Query.Add(k, v)
	})
	readValues(event, "headers", "multiValueHeaders", func(k, v string) {
		req.Header.Add(k, v)
	})

	body := event.Get("body")
	if body.Type == gjson.String && body.Str != "" {
		if event.Get("isBase64Encoded").Bool() {
			decoded, err := base64.StdEncoding.DecodeString(body.Str)
			if err != nil {
				return nil, fmt.Errorf("%w: body is not valid base64: %v", ErrInvalidEvent, err)
			}
			req.Body = decoded
		} else {
			req.Body = []byte(body.Str)
		}
	}

	return req, nil
}

func readValues(event gjson.Result, single, multi string, add func(k, v string)) {
	if m := event.Get(multi); m.IsObject() {
		m.ForEach(func(key, values gjson.Result) bool {
			for _, v := range values.Array() {
				add(key.String(), v.String())
			}
			return true
		})
		return
	}

	event.Get(single).ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Null {
			add(key.String(), value.String())
		}
		return true
	})
}
