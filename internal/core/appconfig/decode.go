package appconfig

import (
	"fmt"
	"mime"
	"strings"

	"github.com/bytedance/sonic"
	"go.yaml.in/yaml/v3"
)

// Content types understood by DecodeContent
const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/x-yaml"
)

// DecodeContent turns configuration content into T. JSON and YAML are decoded;
// anything else is only accepted when T is a string or a byte slice.
func DecodeContent[T any](content []byte, contentType string) (T, error) {
	var value T

	switch mediaType(contentType) {
	case ContentTypeJSON:
		if err := sonic.Unmarshal(content, &value); err != nil {
			return value, fmt.Errorf("failed to decode JSON configuration: %w", err)
		}
		return value, nil
	case ContentTypeYAML, "application/yaml", "text/yaml", "text/x-yaml":
		if err := yaml.Unmarshal(content, &value); err != nil {
			return value, fmt.Errorf("failed to decode YAML configuration: %w", err)
		}
		return value, nil
	}

	switch target := any(&value).(type) {
	case *string:
		*target = string(content)
	case *[]byte:
		*target = append([]byte(nil), content...)
	default:
		return value, fmt.Errorf("unsupported configuration content type %q", contentType)
	}
	return value, nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
