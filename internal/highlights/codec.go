// Package highlights stores ordered lists of short strings (experience
// highlights, project tags) in a single text column and reads them back,
// tolerating the malformed values that older unvalidated writes left behind.
package highlights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// EmptyList is the canonical encoding of a list with no items.
const EmptyList = "[]"

// bulletMarkers are the leading glyphs removed from an item when they are
// followed by whitespace.
var bulletMarkers = []string{"•", "◦", "▪", "‣", "·", "-", "*", "+"}

// Strategy attempts to turn a stored value into a list. The boolean reports
// whether the strategy produced a usable result.
type Strategy func(raw string) ([]string, bool)

// cascade is tried in order by Decode; the first strategy that succeeds wins.
var cascade = []Strategy{
	strictOrEmpty,
	RepairParse,
	SplitLines,
}

// Encode serializes items into the canonical stored form. Items are trimmed,
// leading bullet markers are removed, and empty items are dropped.
func Encode(items []string) string {
	cleaned := Clean(items)
	if len(cleaned) == 0 {
		return EmptyList
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cleaned); err != nil {
		// []string always marshals; keep the contract of never failing.
		return EmptyList
	}
	return strings.TrimRight(buf.String(), "\n")
}

// EncodeValues encodes a list of arbitrary JSON values, coercing each element
// to a string first.
func EncodeValues(values []any) string {
	return Encode(Stringify(values))
}

// Clean applies the encoder's item normalization without serializing.
func Clean(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = stripBullets(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func stripBullets(item string) string {
	for {
		stripped := false
		for _, marker := range bulletMarkers {
			rest, ok := strings.CutPrefix(item, marker)
			if !ok || rest == "" {
				continue
			}
			trimmed := strings.TrimLeft(rest, " \t\u00a0")
			if len(trimmed) == len(rest) {
				// marker not followed by whitespace, e.g. "-5% latency"
				continue
			}
			item = trimmed
			stripped = true
			break
		}
		if !stripped {
			return item
		}
	}
}

// Decode reads a stored value of unknown provenance. It never fails: when no
// strategy yields a list the result is empty (and non-nil).
func Decode(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	for _, strategy := range cascade {
		if items, ok := strategy(raw); ok {
			return items
		}
	}
	return []string{}
}

// DecodePtr is Decode for nullable columns.
func DecodePtr(raw *string) []string {
	if raw == nil {
		return []string{}
	}
	return Decode(*raw)
}

// IsCanonical reports whether raw already parses strictly as a list. Values
// that pass need no rewrite by the Repairer.
func IsCanonical(raw string) bool {
	_, ok := StrictParse(raw)
	return ok
}

// StrictParse parses raw as a JSON array. Non-string elements are coerced to
// their string form and null elements are skipped.
func StrictParse(raw string) ([]string, bool) {
	var values []any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		return nil, false
	}
	if values == nil {
		// literal null decodes into a nil slice
		return nil, false
	}
	if strings.TrimSpace(raw[dec.InputOffset():]) != "" {
		return nil, false
	}
	return Stringify(values), true
}

// strictOrEmpty is StrictParse, except that well-formed JSON which is not a
// list (a number, a string, an object, null) yields no items instead of
// falling through to repair.
func strictOrEmpty(raw string) ([]string, bool) {
	if items, ok := StrictParse(raw); ok {
		return items, true
	}
	if json.Valid([]byte(raw)) {
		return []string{}, true
	}
	return nil, false
}

// UnwrapQuoted handles a list that was encoded twice: a JSON string whose
// content is itself a strict list.
func UnwrapQuoted(raw string) ([]string, bool) {
	var inner string
	if err := json.Unmarshal([]byte(raw), &inner); err != nil {
		return nil, false
	}
	return StrictParse(inner)
}

// RepairParse recovers a list from a value that was cut off or lost its
// brackets. It first truncates past the last quote and closes the brackets;
// if that still does not parse, it closes a dangling string instead.
func RepairParse(raw string) ([]string, bool) {
	if items, ok := StrictParse(truncateAndBracket(raw)); ok {
		return items, true
	}
	closed, ok := closeAndBracket(raw)
	if !ok {
		return nil, false
	}
	return StrictParse(closed)
}

func truncateAndBracket(raw string) string {
	fixed := raw
	if strings.Contains(fixed, `"`) && !strings.HasSuffix(fixed, `"`) {
		if last := strings.LastIndex(fixed, `"`); last > 0 {
			fixed = fixed[:last+1]
		}
	}
	return bracket(fixed)
}

func closeAndBracket(raw string) (string, bool) {
	fixed := strings.TrimRight(raw, " \t\r\n")
	if !openString(fixed) {
		return "", false
	}
	fixed = strings.TrimSuffix(fixed, `\`) + `"`
	return bracket(fixed), true
}

func bracket(s string) string {
	if !strings.HasPrefix(s, "[") {
		s = "[" + s
	}
	if !strings.HasSuffix(s, "]") {
		s += "]"
	}
	return s
}

// openString reports whether s ends inside a double-quoted string.
func openString(s string) bool {
	inString := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && inString:
			escaped = true
		case r == '"':
			inString = !inString
		}
	}
	return inString
}

// SplitLines is the legacy fallback for values stored as one item per line.
// It only applies when raw contains a newline; lines are trimmed and empty
// lines dropped, bullet markers are left alone.
func SplitLines(raw string) ([]string, bool) {
	if !strings.Contains(raw, "\n") {
		return nil, false
	}
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, true
}

// ParseText turns admin free text (one item per line) into a cleaned list.
// Text that is already a valid list encoding is parsed as such, and a quoted
// list that was cut off is repaired; anything else is taken line by line so
// nothing the admin typed is discarded.
func ParseText(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}
	if items, ok := StrictParse(trimmed); ok {
		return Clean(items)
	}
	if items, ok := UnwrapQuoted(trimmed); ok {
		return Clean(items)
	}
	if strings.HasPrefix(trimmed, "[") && strings.Contains(trimmed, `"`) {
		if items, ok := RepairParse(trimmed); ok && keepsAllText(trimmed, items) {
			return Clean(items)
		}
	}
	return Clean(strings.Split(trimmed, "\n"))
}

// keepsAllText reports whether items still carry every character of raw
// other than quotes, brackets, commas, escapes and whitespace, i.e. repair
// only closed the value and dropped nothing the admin typed.
func keepsAllText(raw string, items []string) bool {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return false
	}
	return textOnly(raw) == textOnly(buf.String())
}

func textOnly(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '"', ',', '\\':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Stringify coerces decoded JSON values into strings. Nested arrays and
// objects keep their compact JSON text.
func Stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch t := v.(type) {
		case nil:
			continue
		case string:
			out = append(out, t)
		case json.Number:
			out = append(out, t.String())
		case bool, float64, int, int64:
			out = append(out, fmt.Sprint(t))
		default:
			b, err := json.Marshal(t)
			if err != nil {
				continue
			}
			out = append(out, string(b))
		}
	}
	return out
}
