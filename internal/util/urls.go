package util

import (
	"net/url"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s)"']+`)

// ExtractURLs returns every URL found in text, in order of appearance.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// DomainFromURL extracts the host of a URL with any leading "www." removed.
// Returns "" for unparseable input.
func DomainFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	domain := parsed.Hostname()
	return strings.TrimPrefix(domain, "www.")
}

// MatchURLToBrand associates a URL with one of the given brand names by
// comparing its domain against each name with spaces removed. Returns ""
// when no brand matches.
func MatchURLToBrand(rawURL string, brands []string) string {
	domain := strings.ToLower(DomainFromURL(rawURL))
	if domain == "" {
		return ""
	}
	for _, brand := range brands {
		compact := strings.ReplaceAll(strings.ToLower(brand), " ", "")
		if compact == "" {
			continue
		}
		if strings.Contains(domain, compact) || strings.Contains(compact, domain) {
			return brand
		}
	}
	return ""
}

// CleanText collapses all runs of whitespace to single spaces and trims the
// result.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
