// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		rich = bluemonday.UGCPolicy()
		// Editor alignment/indent classes, e.g. "ql-align-center ql-indent-1".
		rich.AllowAttrs("class").Matching(regexp.MustCompile(`^ql-[a-z0-9-]+( ql-[a-z0-9-]+)*$`)).Globally()
		rich.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
		rich.AddTargetBlankToFullyQualifiedLinks(true)
		strict = bluemonday.StrictPolicy()
	})
	return rich, strict
}

// Sanitize returns entry HTML with scripts, event handlers, unsafe URLs and
// non-content elements removed. Formatting, links, lists, tables and
// <img src> survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return p.Sanitize(s)
}

// HasContent reports whether sanitized HTML still carries something a reader
// would see: visible text or an image.
func HasContent(s string) bool {
	if s == "" {
		return false
	}
	_, st := policies()
	text := html.UnescapeString(st.Sanitize(s))
	if strings.TrimSpace(text) != "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), "<img")
}

// PlainText strips all markup, for email bodies and previews.
func PlainText(s string) string {
	_, st := policies()
	return strings.TrimSpace(html.UnescapeString(st.Sanitize(s)))
}

var srcAttr = regexp.MustCompile(`src="([^"]+)"`)

// ImageSources returns every src="..." value in s, unescaped.
func ImageSources(s string) []string {
	matches := srcAttr.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, html.UnescapeString(m[1]))
	}
	return out
}
