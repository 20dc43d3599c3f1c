package llmreasoning

import "strings"

// maxFieldLengths caps each free-text field before it is concatenated into
// a prompt (spec 4.3 "input sanitization": 100-500 depending on field).
const (
	maxLocationLength  = 200
	maxInterestsLength = 300
	maxCityLength      = 100
	maxNameLength      = 200
)

// Sanitize truncates s to maxLen and strips ASCII control characters,
// preventing prompt injection via embedded control sequences and keeping
// prompts bounded in size.
func Sanitize(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != ' ' {
			continue
		}
		if r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}

// SanitizeList sanitizes every element of a string slice.
func SanitizeList(items []string, maxLen int) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s := Sanitize(it, maxLen)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
