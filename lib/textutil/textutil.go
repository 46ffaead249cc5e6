package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeName lower-cases a name and strips all whitespace, for loose
// comparisons between source spellings of the same thing.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// Slug derives a file-name-safe key from a human name, e.g.
// "Core Salesforce" -> "core-salesforce".
func Slug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// MatchName reports whether the normalized name contains any of the
// given normalized matchers.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
