package chat

import (
	"encoding/json"
	"strings"

	"github.com/medmole/medmole/internal/model"
)

// SplitSuggestions separates the conversational part of a model response
// from its structured suggestion block. The block may be a single object or
// an array, optionally wrapped in markdown code fences. Model output is
// untrusted text: a malformed block is dropped and the conversational part
// is still returned.
func SplitSuggestions(text string) (reply string, suggestions []model.Suggestion) {
	marker := strings.Index(text, SuggestionMarker)
	if marker < 0 {
		return strings.TrimSpace(text), nil
	}

	reply = strings.TrimSpace(text[:marker])
	raw := stripFences(text[marker+len(SuggestionMarker):])
	if raw == "" {
		return reply, nil
	}

	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
			return reply, nil
		}
		return reply, suggestions
	}

	var single model.Suggestion
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return reply, nil
	}
	return reply, []model.Suggestion{single}
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		// Drop the language tag line, e.g. "json".
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
