package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adocshq/adocs/internal/sections"
)

// cleanJSON strips markdown code fences and surrounding prose so the
// remaining text can be fed to the JSON decoder.
func cleanJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}

	// Trim prose around the outermost object.
	if start := strings.Index(s, "{"); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndex(s, "}"); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}
	return strings.TrimSpace(s)
}

// ParseStructure decodes and validates a model reply into a documentation
// structure. Any failure here counts as malformed output.
func ParseStructure(raw string) (*sections.Structure, error) {
	cleaned := cleanJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty response")
	}

	var st sections.Structure
	if err := json.Unmarshal([]byte(cleaned), &st); err != nil {
		return nil, fmt.Errorf("decoding structure: %w", err)
	}
	if len(st.Sections) == 0 {
		return nil, fmt.Errorf("structure has no sections")
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return &st, nil
}
