// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
	"unicode"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace,
// preserving case.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lowercases a team role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a search query, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Username lowercases s and keeps only ASCII letters and digits.
func Username(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EmailList splits a comma-separated list of addresses, normalizing each and
// dropping blanks and duplicates. Order of first appearance is kept.
func EmailList(s string) []string {
	return dedupe(strings.Split(s, ","), Email)
}

// Categories trims each category, dropping blanks and exact duplicates.
func Categories(in []string) []string {
	return dedupe(in, strings.TrimSpace)
}

func dedupe(in []string, norm func(string) string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
