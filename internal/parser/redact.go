package parser

import (
	"encoding/json"
	"fmt"
)

const (
	maxLoggedString   = 200
	maxLoggedResponse = 1000
)

// Redact returns a copy of a decoded response that is safe to log: inline
// image payloads become size markers and long strings are truncated.
func Redact(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			switch {
			case k == "inlineData" || k == "inline_data":
				out[k] = redactInline(v)
			case k == "data":
				if arr, ok := v.([]any); ok {
					out[k] = fmt.Sprintf("[bytes:%d]", len(arr))
					continue
				}
				out[k] = Redact(v)
			default:
				out[k] = Redact(v)
			}
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Redact(v)
		}
		return out
	case string:
		return truncate(n, maxLoggedString)
	}
	return node
}

func redactInline(v any) any {
	switch inline := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(inline))
		for k, val := range inline {
			if k != "data" {
				out[k] = Redact(val)
			}
		}
		switch data := inline["data"].(type) {
		case string:
			out["data"] = fmt.Sprintf("[base64:%d]", len(data))
		case []any:
			out["data"] = fmt.Sprintf("[bytes:%d]", len(data))
		default:
			return "[REDACTED_BINARY]"
		}
		return out
	case []any:
		return fmt.Sprintf("[bytes:%d]", len(inline))
	case string:
		return fmt.Sprintf("[base64:%d]", len(inline))
	}
	return "[REDACTED_BINARY]"
}

// RedactBody decodes body and renders the redacted tree as a log-sized string.
// Bodies that are not JSON are truncated as text.
func RedactBody(body []byte) string {
	root, err := Decode(body)
	if err != nil {
		return truncate(string(body), maxLoggedResponse)
	}
	out, err := json.Marshal(Redact(root))
	if err != nil {
		return "[unrenderable response]"
	}
	return truncate(string(out), maxLoggedResponse)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
