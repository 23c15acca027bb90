package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var apostropheReplacer = strings.NewReplacer("'", "", "’", "", "‘", "", "`", "")

// Normalize lower-cases text and drops apostrophes so "King's Cross" and
// "kings cross" compare equal
func Normalize(s string) string {
	return strings.ToLower(apostropheReplacer.Replace(s))
}

// ContainsFold reports whether sub occurs in s, ignoring case
func ContainsFold(s, sub string) bool {
	if sub == "" {
		return false
	}
	return strings.Contains(Normalize(s), Normalize(sub))
}

// KeywordPattern compiles a case-insensitive whole-word matcher for a set of
// words or phrases. Spaces inside a phrase match any run of whitespace.
func KeywordPattern(keywords ...string) *regexp.Regexp {
	parts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		fields := strings.Fields(Normalize(k))
		for i, f := range fields {
			fields[i] = regexp.QuoteMeta(f)
		}
		parts = append(parts, strings.Join(fields, `\s+`))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)\b`)
}

// ParseAmount parses numbers written with thousands separators ("1,800", "2.5")
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// JoinAnd joins items as "a", "a and b" or "a, b and c"
func JoinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
