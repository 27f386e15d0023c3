package plan

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedBlockRe matches a fenced code block, optionally tagged "json".
// Vendors frequently wrap their JSON answer in one despite instructions.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// extractJSON locates and parses a JSON object or array inside raw vendor
// text. It tries a fenced code block first; when no fence exists or the
// fenced body is not JSON (a code fence in another language, say), it
// falls back to the outermost balanced {...} or [...] span of the whole
// text. On failure it returns a single invalid_json error carrying the
// parser message.
func extractJSON(raw string) (any, *ValidationError) {
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		if tree, err := decodeJSON(strings.TrimSpace(m[1])); err == nil {
			return tree, nil
		}
	}

	candidate := balancedSpan(raw)
	if candidate == "" {
		return nil, &ValidationError{
			Path:     "$",
			Code:     CodeInvalidJSON,
			Message:  "no JSON object or array found in response",
			Received: truncateForDiagnostics(raw),
		}
	}

	tree, err := decodeJSON(candidate)
	if err != nil {
		return nil, &ValidationError{
			Path:     "$",
			Code:     CodeInvalidJSON,
			Message:  "response is not valid JSON: " + err.Error(),
			Received: truncateForDiagnostics(raw),
		}
	}
	return tree, nil
}

func decodeJSON(candidate string) (any, error) {
	var tree any
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// balancedSpan returns the first outermost balanced {...} or [...] span in
// s, or "" when none exists. String literals are skipped so braces inside
// them do not confuse the depth count.
func balancedSpan(s string) string {
	start := -1
	var open, close byte
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if start == -1 {
			if c == '{' || c == '[' {
				start = i
				open = c
				if c == '{' {
					close = '}'
				} else {
					close = ']'
				}
				depth = 1
			}
			continue
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// unwrapEnvelope peels common vendor envelopes off the parsed tree.
// Order: bare document, then {"plan": {...}}, then {"plans": [...]} (first
// element), then a bare top-level array (first element).
func unwrapEnvelope(tree any) any {
	if arr, ok := tree.([]any); ok {
		if len(arr) > 0 {
			return arr[0]
		}
		return tree
	}

	obj, ok := tree.(map[string]any)
	if !ok {
		return tree
	}

	// A document-shaped object is used as-is.
	if _, ok := obj["planOverview"]; ok {
		return obj
	}
	if _, ok := obj["weeklySchedule"]; ok {
		return obj
	}

	if inner, ok := obj["plan"].(map[string]any); ok {
		return inner
	}
	if arr, ok := obj["plans"].([]any); ok && len(arr) > 0 {
		return arr[0]
	}
	return tree
}

const maxDiagnosticLen = 500

func truncateForDiagnostics(s string) string {
	if len(s) > maxDiagnosticLen {
		return s[:maxDiagnosticLen] + "..."
	}
	return s
}
