package usecase

import (
	"regexp"
	"strings"
)

// modifierTagRe matches a single "[as-<tag>]" unit; tag content is
// alphanumeric and opaque to the resolver (§4.1).
var modifierTagRe = regexp.MustCompile(`\[as-([0-9A-Za-z]+)\]`)

// modifierSuffixRe matches the whole trailing run of modifier tags,
// tolerating whitespace between tags and before the string end.
var modifierSuffixRe = regexp.MustCompile(`(?:\s*\[as-[0-9A-Za-z]+\])+\s*$`)

// ParseModifiers extracts the ordered list of modifier tag contents from a
// submitted song title's trailing "[as-<tag>]" suffix. Returns nil if the
// title carries no such suffix. Pure and total.
func ParseModifiers(title string) []string {
	loc := modifierSuffixRe.FindStringIndex(title)
	if loc == nil {
		return nil
	}

	matches := modifierTagRe.FindAllStringSubmatch(title[loc[0]:], -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// StripModifiers returns title with its trailing modifier-tag suffix (if
// any) removed, along with the whitespace it left behind. Pure and total.
func StripModifiers(title string) string {
	loc := modifierSuffixRe.FindStringIndex(title)
	if loc == nil {
		return title
	}
	return strings.TrimRight(title[:loc[0]], " \t")
}
