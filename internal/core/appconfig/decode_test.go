package appconfig

import "testing"

func TestDecodeContent(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg, err := DecodeContent[testConfig]([]byte(firstConfig), "application/json; charset=utf-8")
		if err != nil {
			t.Fatalf("DecodeContent failed: %v", err)
		}
		if cfg.Name != "Julian" || cfg.Age != 30 || !cfg.IsOK {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		type yamlConfig struct {
			Name string `yaml:"name"`
			Age  int    `yaml:"age"`
		}
		cfg, err := DecodeContent[yamlConfig]([]byte("name: Julian\nage: 30\n"), "application/x-yaml")
		if err != nil {
			t.Fatalf("DecodeContent failed: %v", err)
		}
		if cfg.Name != "Julian" || cfg.Age != 30 {
			t.Errorf("Unexpected config: %+v", cfg)
		}
	})

	t.Run("raw text into string", func(t *testing.T) {
		text, err := DecodeContent[string]([]byte("plain value"), "text/plain")
		if err != nil {
			t.Fatalf("DecodeContent failed: %v", err)
		}
		if text != "plain value" {
			t.Errorf("Expected raw text, got %q", text)
		}
	})

	t.Run("raw text into bytes", func(t *testing.T) {
		raw, err := DecodeContent[[]byte]([]byte("plain value"), "")
		if err != nil {
			t.Fatalf("DecodeContent failed: %v", err)
		}
		if string(raw) != "plain value" {
			t.Errorf("Expected raw bytes, got %q", raw)
		}
	})

	t.Run("raw text into struct", func(t *testing.T) {
		if _, err := DecodeContent[testConfig]([]byte("plain value"), "text/plain"); err == nil {
			t.Error("Expected an error for text content into a struct")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := DecodeContent[testConfig]([]byte("{"), "application/json"); err == nil {
			t.Error("Expected an error for invalid JSON")
		}
	})
}
