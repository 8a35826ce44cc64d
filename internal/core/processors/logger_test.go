package processors

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"redactproxy/internal/core"
)

func TestRequestLoggerWithCallerInfo(t *testing.T) {
	// 创建一个 observer 来捕获日志
	observedCore, observedLogs := observer.New(zap.InfoLevel)
	testLogger := zap.New(observedCore, zap.AddCaller(), zap.AddCallerSkip(1))

	req := &core.Request{Method: "GET", Path: "/users/42", Body: []byte(`{"a":1}`)}
	ctx := core.NewProxyContext(context.Background(), testLogger, req)

	requestLogger := NewRequestLogger()
	if err := requestLogger.OnRequest(ctx, req); err != nil {
		t.Fatalf("OnRequest failed: %v", err)
	}

	logs := observedLogs.All()
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(logs))
	}

	log := logs[0]
	if log.Message != "Request Started" {
		t.Errorf("Expected message 'Request Started', got '%s'", log.Message)
	}

	// caller 应该显示这个测试文件，而不是 processors/logger.go
	if !log.Caller.Defined || !strings.Contains(log.Caller.File, "logger_test.go") {
		t.Errorf("Expected caller file to contain 'logger_test.go', got %s", log.Caller.File)
	}

	expectedFields := map[string]interface{}{
		"method":     "GET",
		"path":       "/users/42",
		"body_bytes": int64(7),
		"request_id": ctx.RequestID,
	}
	for key, expected := range expectedFields {
		fieldValue, found := log.ContextMap()[key]
		if !found {
			t.Errorf("Expected field '%s' not found in log", key)
			continue
		}
		if fieldValue != expected {
			t.Errorf("Expected field '%s' to be '%v', got '%v'", key, expected, fieldValue)
		}
	}
}

func TestRequestLoggerOnResponse(t *testing.T) {
	observedCore, observedLogs := observer.New(zap.InfoLevel)
	testLogger := zap.New(observedCore)

	req := &core.Request{Method: "GET", Path: "/"}
	ctx := core.NewProxyContext(context.Background(), testLogger, req)
	ctx.SetMetadata(MetadataRedacted, true)

	if err := NewRequestLogger().OnResponse(ctx, &core.Response{StatusCode: 201}); err != nil {
		t.Fatalf("OnResponse failed: %v", err)
	}

	logs := observedLogs.All()
	if len(logs) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(logs))
	}

	log := logs[0]
	if log.Message != "Request Finished" {
		t.Errorf("Expected message 'Request Finished', got '%s'", log.Message)
	}

	fields := log.ContextMap()
	if _, found := fields["latency"]; !found {
		t.Error("Expected 'latency' field not found in log")
	}
	if fields["status"] != int64(201) {
		t.Errorf("Expected status 201, got '%v'", fields["status"])
	}
	if fields["redacted"] != true {
		t.Errorf("Expected redacted true, got '%v'", fields["redacted"])
	}
}
