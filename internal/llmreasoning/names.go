package llmreasoning

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	leadingThe       = regexp.MustCompile(`(?i)^the\s+`)
	parentheticalRe  = regexp.MustCompile(`\([^)]*\)`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
)

// NormalizeName applies the landmark-name normalization rules from spec
// 4.3 op 2: drop a leading "The ", drop parentheticals, split camelCase
// into separate words, and collapse whitespace.
func NormalizeName(name string) string {
	name = leadingThe.ReplaceAllString(strings.TrimSpace(name), "")
	name = parentheticalRe.ReplaceAllString(name, "")
	name = splitCamelCase(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// splitCamelCase inserts a space before every upper-case rune that follows
// a lower-case rune, e.g. "EiffelTower" -> "Eiffel Tower".
func splitCamelCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
