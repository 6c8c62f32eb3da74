package config

import (
	"encoding/json"
	"fmt"

	"github.com/ghodss/yaml"
)

const (
	OutputFormatYaml = "yaml"
	OutputFormatJson = "json"
)

// Render returns the redacted Pipeline in the requested output format.
func Render(p Pipeline, format string) ([]byte, error) {
	r := p.Redacted()
	switch format {
	case OutputFormatYaml, "":
		return yaml.Marshal(r)
	case OutputFormatJson:
		return json.MarshalIndent(r, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported output format %q, use %v or %v", format, OutputFormatYaml, OutputFormatJson)
	}
}
