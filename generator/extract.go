package generator

import (
	"encoding/json"
	"regexp"
	"strings"
)

// trailingCommaRe matches a comma sitting directly before a closing brace or
// bracket, a common artifact in model-emitted JSON.
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// extractJSON recovers a JSON value embedded in arbitrary model output.
// It tries, in order: the whole text, the text with markdown fences
// stripped, the first {...} span, the first [...] span, and finally each
// span with trailing commas removed. Returns ok=false when nothing parses;
// it never fails.
func extractJSON(text string) (any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if v, ok := tryParseJSON(text); ok {
		return v, true
	}

	stripped := stripMarkdownFences(text)
	if stripped != text {
		if v, ok := tryParseJSON(stripped); ok {
			return v, true
		}
	}

	for _, delims := range [][2]string{{"{", "}"}, {"[", "]"}} {
		span, ok := delimitedSpan(stripped, delims[0], delims[1])
		if !ok {
			continue
		}
		if v, ok := tryParseJSON(span); ok {
			return v, true
		}
		repaired := trailingCommaRe.ReplaceAllString(span, "$1")
		if repaired != span {
			if v, ok := tryParseJSON(repaired); ok {
				return v, true
			}
		}
	}

	return nil, false
}

func tryParseJSON(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// stripMarkdownFences removes ```json ... ``` or ``` ... ``` wrapping.
// Returns the original text when no fence is found.
func stripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	// An unclosed fence keeps every content line; only a real closing
	// ``` line is dropped.
	endIdx := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

// delimitedSpan returns the greedy span from the first open delimiter to the
// last close delimiter.
func delimitedSpan(text, opening, closing string) (string, bool) {
	start := strings.Index(text, opening)
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(text, closing)
	if end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
