package namegen

import (
	"strings"
	"unicode"
)

// phoneticRule is one ordered substitution. Rules apply in a single
// left-to-right pass: at each position the first matching rule fires and
// the scan resumes after the replacement, so produced text is never
// re-substituted and the outcome is independent of rule overlap.
type phoneticRule struct {
	pattern     string
	replacement string
}

// harshenRules shift consonants toward harder articulations. softenRules
// is the exact inverse; its "sh" rule is ordered before any single-letter
// rule could shadow it.
var harshenRules = []phoneticRule{
	{"t", "k"},
	{"s", "sh"},
	{"l", "r"},
	{"v", "g"},
}

var softenRules = []phoneticRule{
	{"k", "t"},
	{"sh", "s"},
	{"r", "l"},
	{"g", "v"},
}

// applyPhoneticRules rewrites s in one deterministic pass. Rule patterns
// are ASCII, so multi-byte runes pass through untouched.
func applyPhoneticRules(s string, rules []phoneticRule) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); {
		matched := false
		for _, rule := range rules {
			if strings.HasPrefix(s[i:], rule.pattern) {
				b.WriteString(rule.replacement)
				i += len(rule.pattern)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

func isVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

func isConsonant(r rune) bool {
	return unicode.IsLetter(r) && !isVowel(r)
}
