package structured

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"brand-studio-api/internal/sanitize"
)

// Models asked for JSON usually comply, but wrap the payload in prose or a
// markdown fence. Decode digs the first object or array span out of the raw
// completion, cleans every string leaf, and decodes the result into v.

type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Reason
}

// Greedy and outermost: the span runs from the first opening brace or bracket
// to the last closing one of the same kind.
var spanPattern = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

func Decode(raw string, v any) error {
	value, err := Extract(raw)
	if err != nil {
		return err
	}

	cleaned := sanitizeValue(value)
	buf, err := json.Marshal(cleaned)
	if err != nil {
		return &MalformedResponseError{Reason: err.Error()}
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return &MalformedResponseError{Reason: err.Error()}
	}
	return nil
}

// Extract parses the embedded JSON span, falling back to the raw text, and
// fails only when both attempts fail. Callers never get a silent default.
func Extract(raw string) (any, error) {
	candidates := make([]string, 0, 2)
	if span := spanPattern.FindString(raw); span != "" {
		candidates = append(candidates, span)
	}
	candidates = append(candidates, strings.TrimSpace(raw))

	for _, candidate := range candidates {
		var value any
		if err := json.Unmarshal([]byte(candidate), &value); err == nil {
			return value, nil
		}
	}

	return nil, &MalformedResponseError{Reason: fmt.Sprintf("no parsable JSON in %q", snippet(raw))}
}

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return sanitize.Clean(v)
	case map[string]any:
		for key, item := range v {
			v[key] = sanitizeValue(item)
		}
		return v
	case []any:
		for i := range v {
			v[i] = sanitizeValue(v[i])
		}
		return v
	default:
		return value
	}
}

func snippet(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 80 {
		return raw[:80] + "..."
	}
	return raw
}
