package generator

import (
	"strings"
	"unicode/utf8"
)

const fallbackTitleLimit = 60

// coercePolish maps an extracted JSON value onto PolishResult. Missing or
// unusable fields fall back to the pre-polish prompt and the model's raw
// text, so both fields are always populated.
func coercePolish(value any, originalPrompt, rawText string) PolishResult {
	result := PolishResult{
		OriginalPrompt: originalPrompt,
		PolishedPrompt: strings.TrimSpace(rawText),
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return result
	}
	if s, ok := stringField(fields, "original_prompt"); ok {
		result.OriginalPrompt = s
	}
	if s, ok := stringField(fields, "polished_prompt", "prompt"); ok {
		result.PolishedPrompt = s
	}
	return result
}

// coerceFinal maps an extracted JSON value onto FinalPost, accepting the
// short field aliases (title/text/hashtags) some models emit. On total
// failure the title becomes the first line of the polished prompt and the
// body becomes the raw model output.
func coerceFinal(value any, rawText, polishedPrompt string) FinalPost {
	result := FinalPost{
		PostTitle:    firstLine(polishedPrompt, fallbackTitleLimit),
		PostText:     strings.TrimSpace(rawText),
		PostHashtags: []string{},
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return result
	}
	if s, ok := stringField(fields, "post_title", "title"); ok {
		result.PostTitle = s
	}
	if s, ok := stringField(fields, "post_text", "text"); ok {
		result.PostText = s
	}
	if ss, ok := stringSliceField(fields, "post_hashtags", "hashtags"); ok {
		result.PostHashtags = ss
	}
	return result
}

// stringField returns the first non-empty string found under any of the
// given keys.
func stringField(fields map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// stringSliceField returns the first key holding a list, keeping only its
// string elements.
func stringSliceField(fields map[string]any, keys ...string) ([]string, bool) {
	for _, key := range keys {
		items, ok := fields[key].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// firstLine returns the first non-empty line of s truncated to limit runes.
// Truncation counts runes, not bytes, so a multi-byte character is never cut
// mid-sequence.
func firstLine(s string, limit int) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) > limit {
			return string([]rune(line)[:limit])
		}
		return line
	}
	return ""
}
