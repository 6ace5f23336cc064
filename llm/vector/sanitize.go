package vector

import (
	"regexp"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[A-Za-z0-9+-]*")
	closingFence = regexp.MustCompile("```$")
)

// StripFences removes optional markdown code fences (```svg ... ```) that
// models emit around the markup. Unfenced input is only trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(openingFence.ReplaceAllString(s, ""))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(closingFence.ReplaceAllString(s, ""))
	}
	return s
}

// LooksLikeSVG reports whether s contains an <svg> root element.
func LooksLikeSVG(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<svg") && strings.Contains(lower, "</svg>")
}
