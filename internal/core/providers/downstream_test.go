package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"redactproxy/internal/core"
)

func TestDownstreamForward(t *testing.T) {
	var received *http.Request
	var receivedBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r
		b, _ := io.ReadAll(r.Body)
		receivedBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer upstream.Close()

	header := http.Header{}
	header.Set("Host", "proxy.example.com")
	header.Set("Accept-Encoding", "br")
	header.Set("Authorization", "Bearer abc")

	d := NewDownstream(5*time.Second, zaptest.NewLogger(t))
	resp, err := d.Forward(context.Background(), upstream.URL+"/v1", &core.Request{
		Method: "POST",
		Path:   "/users",
		Query:  url.Values{"page": []string{"2"}},
		Header: header,
		Body:   []byte(`{"name":"Julian"}`),
	})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	if received.Method != "POST" {
		t.Errorf("Expected POST, got %s", received.Method)
	}
	if received.URL.Path != "/v1/users" {
		t.Errorf("Expected /v1/users, got %s", received.URL.Path)
	}
	if received.URL.Query().Get("page") != "2" {
		t.Errorf("Expected page=2, got %s", received.URL.RawQuery)
	}
	if received.Header.Get("Authorization") != "Bearer abc" {
		t.Error("Expected Authorization header to be forwarded")
	}
	if received.Header.Get("Accept-Encoding") == "br" {
		t.Error("Expected inbound Accept-Encoding to be dropped")
	}
	if received.Host == "proxy.example.com" {
		t.Error("Expected inbound Host to be dropped")
	}
	if receivedBody != `{"name":"Julian"}` {
		t.Errorf("Unexpected body %s", receivedBody)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected 201, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"id":1}` {
		t.Errorf("Unexpected response body %s", resp.Body)
	}
	if !resp.IsJSON() {
		t.Error("Expected a JSON response")
	}
}

func TestDownstreamErrorStatusIsNotAnError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	resp, err := NewDownstream(time.Second, nil).Forward(context.Background(), upstream.URL, &core.Request{Method: "GET", Path: "/"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", resp.StatusCode)
	}
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestDownstreamTransportFailure(t *testing.T) {
	d := NewDownstream(time.Second, nil, WithHTTPClient(failingDoer{}))
	if _, err := d.Forward(context.Background(), "http://downstream", &core.Request{Method: "GET", Path: "/"}); err == nil {
		t.Fatal("Expected an error")
	}
}

func TestBuildURL(t *testing.T) {
	testCases := []struct {
		name     string
		baseURL  string
		path     string
		query    url.Values
		expected string
	}{
		{"plain", "https://api.example.com", "/users", nil, "https://api.example.com/users"},
		{"base with path", "https://api.example.com/prod", "/users/1", nil, "https://api.example.com/prod/users/1"},
		{"query", "https://api.example.com", "/users", url.Values{"q": []string{"a b"}}, "https://api.example.com/users?q=a+b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := buildURL(tc.baseURL, tc.path, tc.query)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}
