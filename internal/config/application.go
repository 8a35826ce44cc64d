package config

import (
	"fmt"

	"redactproxy/internal/core/filter"
)

// FilterConfig is one redaction rule of the application configuration
type FilterConfig struct {
	Method      string   `json:"method" yaml:"method"`
	Path        string   `json:"path" yaml:"path"`
	FilterPaths []string `json:"filterPaths" yaml:"filterPaths"`
}

// ApplicationConfig is the remotely managed configuration snapshot.
// A snapshot is never modified once returned by the Loader.
type ApplicationConfig struct {
	BaseURL           string         `json:"baseUrl" yaml:"baseUrl"`
	ErrorOnMissingKey *bool          `json:"errorOnMissingKey" yaml:"errorOnMissingKey"`
	Filters           []FilterConfig `json:"filters" yaml:"filters"`
}

// ConfigValidationError reports a required field missing from a snapshot
type ConfigValidationError struct {
	Field string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("missing %s in application config", e.Field)
}

// Validate checks the required fields of a snapshot
func (c *ApplicationConfig) Validate() error {
	if c == nil || c.BaseURL == "" {
		return &ConfigValidationError{Field: "baseUrl"}
	}
	if c.ErrorOnMissingKey == nil {
		return &ConfigValidationError{Field: "errorOnMissingKey"}
	}
	if c.Filters == nil {
		return &ConfigValidationError{Field: "filters"}
	}
	return nil
}

// NewResponseFilter compiles the snapshot's rules in order
func (c *ApplicationConfig) NewResponseFilter() (*filter.ResponseFilter, error) {
	f := filter.NewResponseFilter(filter.WithErrorOnMissingKey(c.ErrorOnMissingKey != nil && *c.ErrorOnMissingKey))
	for i, fc := range c.Filters {
		if err := f.AddFilter(fc.Method, fc.Path, fc.FilterPaths); err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
	}
	return f, nil
}
