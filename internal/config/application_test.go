package config

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestApplicationConfigValidate(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           *ApplicationConfig
		expectedField string
	}{
		{"nil snapshot", nil, "baseUrl"},
		{"missing baseUrl", &ApplicationConfig{ErrorOnMissingKey: boolPtr(false), Filters: []FilterConfig{}}, "baseUrl"},
		{"missing errorOnMissingKey", &ApplicationConfig{BaseURL: "https://api", Filters: []FilterConfig{}}, "errorOnMissingKey"},
		{"missing filters", &ApplicationConfig{BaseURL: "https://api", ErrorOnMissingKey: boolPtr(true)}, "filters"},
		{"valid", &ApplicationConfig{BaseURL: "https://api", ErrorOnMissingKey: boolPtr(false), Filters: []FilterConfig{}}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectedField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var validationErr *ConfigValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Expected ConfigValidationError, got %v", err)
			}
			if validationErr.Field != tc.expectedField {
				t.Errorf("Expected field %s, got %s", tc.expectedField, validationErr.Field)
			}
		})
	}
}

func TestApplicationConfigNewResponseFilter(t *testing.T) {
	cfg := &ApplicationConfig{
		BaseURL:           "https://api",
		ErrorOnMissingKey: boolPtr(true),
		Filters: []FilterConfig{
			{Method: "get", Path: "/users/:id", FilterPaths: []string{"password"}},
		},
	}

	f, err := cfg.NewResponseFilter()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !f.Matches("GET", "/users/1") {
		t.Error("Expected the rule to match GET /users/1")
	}

	// errorOnMissingKey is carried over
	if _, err := f.FilterResult("GET", "/users/1", map[string]any{"name": "x"}); err == nil {
		t.Error("Expected a missing key error")
	}
}
