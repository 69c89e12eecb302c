package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes data as indented JSON. HTML escaping is off so
// URLs keep their literal '&' and '<' characters.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
