package domain

import (
	"regexp"
	"strings"
)

// Extractor pulls an order identifier out of a notification.
type Extractor struct {
	prefix  string
	pattern *regexp.Regexp
}

// NewExtractor matches "<prefix>" followed by digits or hyphens and an optional
// alphanumeric tail, ignoring case.
func NewExtractor(prefix string) *Extractor {
	return &Extractor{
		prefix:  prefix,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prefix) + `[\d-]+[a-z0-9]*`),
	}
}

func (e *Extractor) Prefix() string { return e.prefix }

// Extract prefers the gateway-parsed code, then the first pattern match in content
// that carries more than the bare prefix.
func (e *Extractor) Extract(code, content string) (string, bool) {
	if candidate := strings.TrimSuffix(strings.TrimSpace(code), "-"); candidate != "" {
		return candidate, true
	}
	for _, match := range e.pattern.FindAllString(content, -1) {
		if candidate := strings.TrimRight(match, "-"); len(candidate) > len(e.prefix) {
			return candidate, true
		}
	}
	return "", false
}

// Remainder strips the prefix and one optional hyphen. ok is false when the
// candidate does not start with the prefix or nothing remains.
func (e *Extractor) Remainder(candidate string) (string, bool) {
	if len(candidate) < len(e.prefix) || !strings.EqualFold(candidate[:len(e.prefix)], e.prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(candidate[len(e.prefix):], "-")
	if rest == "" {
		return "", false
	}
	return rest, true
}
