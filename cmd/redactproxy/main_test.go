package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/tidwall/gjson"
)

func TestMain(m *testing.M) {
	SetupServeCmd()
	SetupInvokeCmd()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写文件失败: %v", err)
	}
	return path
}

func TestInvokeCommand(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Julian","secret":"s"}`))
	}))
	defer downstream.Close()

	appConfig := writeFile(t, "app.json", `{
		"baseUrl": "`+downstream.URL+`",
		"errorOnMissingKey": true,
		"filters": [{"method": "GET", "path": "/users/:id", "filterPaths": ["secret"]}]
	}`)
	event := writeFile(t, "event.json", `{"httpMethod":"GET","path":"/users/1","headers":{"Host":"x"}}`)

	viper.Set("log.level", "error")
	viper.Set("appconfig.location", "file")
	viper.Set("appconfig.file", appConfig)
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"invoke", "--event", event})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("invoke 失败: %v", err)
	}

	result := gjson.Parse(strings.TrimSpace(out.String()))
	if result.Get("statusCode").Int() != 200 {
		t.Fatalf("期望状态 200，得到 %s", out.String())
	}
	if result.Get("body").String() != `{"name":"Julian"}` {
		t.Errorf("期望已脱敏的 body，得到 %s", result.Get("body").String())
	}
}

func TestReadEventFromStdin(t *testing.T) {
	eventFile = ""
	data, err := readEvent(strings.NewReader(`{"httpMethod":"GET"}`))
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if string(data) != `{"httpMethod":"GET"}` {
		t.Errorf("得到 %s", data)
	}
}
