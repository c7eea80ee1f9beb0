// Package docs serves the embedded OpenAPI document.
package docs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	once     sync.Once
	jsonDoc  []byte
	parseErr error
)

// YAML returns the raw OpenAPI document.
func YAML() []byte {
	return openapiYAML
}

// JSON returns the OpenAPI document converted to JSON. The conversion runs once.
func JSON() ([]byte, error) {
	once.Do(func() {
		var doc any
		if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
			parseErr = fmt.Errorf("parse openapi.yaml: %w", err)
			return
		}
		jsonDoc, parseErr = json.Marshal(normalize(doc))
	})
	return jsonDoc, parseErr
}

// normalize turns map[any]any nodes into map[string]any so they marshal to JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
