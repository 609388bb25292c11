package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON parses JSON out of a model response that may be wrapped
// in a markdown code fence. The leading ```json (or bare ```) fence
// and the trailing ``` are stripped before unmarshaling into v.
func ExtractJSON(text string, v any) error {
	s := strings.TrimSpace(text)

	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}

	s = strings.TrimSpace(s)
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("failed to parse JSON from model response: %w", err)
	}
	return nil
}
