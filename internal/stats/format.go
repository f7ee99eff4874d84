package stats

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format names an output encoding for a Summary.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Encode renders s as JSON or YAML.
func Encode(s Summary, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported stats format %q", format)
	}
}
