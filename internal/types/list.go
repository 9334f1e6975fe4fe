package types

import (
	"encoding/json"
	"strings"

	"github.com/jasonbahil/portfolio/internal/highlights"
)

// ListInput is a list-bearing request field. It accepts a JSON array, an
// array serialized into a JSON string (older admin forms), or free text with
// one item per line. Items are cleaned the same way the encoder cleans them.
type ListInput []string

// UnmarshalJSON implements json.Unmarshaler
func (l *ListInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*l = ListInput{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*l = ListInput(highlights.ParseText(text))
		return nil
	}

	// arrays and other JSON values go through the tolerant decoder
	*l = ListInput(highlights.Clean(highlights.Decode(raw)))
	return nil
}

// Encoded returns the canonical stored form
func (l ListInput) Encoded() string {
	return highlights.Encode(l)
}
