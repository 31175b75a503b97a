// Package parsing turns free-form model replies into validated JSON objects.
// It never panics on arbitrary input: every failure is reported as a
// *ParseError so callers can fall back to deterministic extraction.
package parsing

import (
	"encoding/json"
	"strings"

	"scholarscout/internal/logger"
)

const previewLimit = 200

// Extract locates the JSON object embedded in a model reply. Markdown code
// fences and surrounding prose are tolerated; the slice from the first "{"
// to the last "}" is returned.
func Extract(raw string) (string, error) {
	cleaned := stripFences(strings.TrimSpace(raw))

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")

	if start == -1 || end == -1 || end < start {
		return "", &ParseError{Reason: "no json object found in reply", Preview: preview(raw)}
	}

	return cleaned[start : end+1], nil
}

// ExtractObject extracts the JSON object from a reply, checks it against the
// given schema and decodes it into a generic map.
func ExtractObject(raw string, schema Schema) (map[string]any, error) {
	doc, err := Extract(raw)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		return nil, &ParseError{Reason: "reply is not a json object", Preview: preview(raw), Err: err}
	}

	if err := validate(doc, schema); err != nil {
		return nil, err
	}

	return data, nil
}

func stripFences(raw string) string {
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)

		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func preview(raw string) string {
	return logger.TruncateForLog(raw, previewLimit)
}
