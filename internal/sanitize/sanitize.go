// Package sanitize strips active-content markup from officer queries before they reach the model.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxRunes is the longest query forwarded to the model, counted in runes.
const MaxRunes = 1000

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeBlock = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsScheme    = regexp.MustCompile(`(?i)javascript:`)
	eventAttr   = regexp.MustCompile(`(?i)on\w+=`)
)

// Clean removes script and iframe blocks (up to the first closing tag), javascript: schemes and inline
// event-handler prefixes, then truncates to MaxRunes and trims surrounding whitespace.
// The truncated result is not re-scanned.
func Clean(raw string) string {
	s := scriptBlock.ReplaceAllString(raw, "")
	s = iframeBlock.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventAttr.ReplaceAllString(s, "")
	s = truncateRunes(s, MaxRunes)
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
