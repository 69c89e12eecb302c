package output

import (
	"io"

	"go.yaml.in/yaml/v3"
)

// YAMLFormatter formats data as YAML. Field names come from yaml tags.
type YAMLFormatter struct{}

// Format formats data as YAML.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}
