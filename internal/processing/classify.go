package processing

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	schemeURL = regexp.MustCompile(`(?i)^https?://[^\s/?#]+(?:[/?#]\S*)?$`)
	bareURL   = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,63}(?::\d{1,5})?(?:[/?#]\S*)?$`)
	urlRegex  = regexp.MustCompile(`https?://[^\s]+`)
)

// Classification is the outcome of Classify.
type Classification struct {
	IsURL      bool   `json:"isUrl"`
	Normalized string `json:"normalized,omitempty"`
}

// Classify decides whether the whole input is a single URL or bare domain.
// Any surrounding prose makes it a text query.
func Classify(input string) Classification {
	input = strings.TrimSpace(input)
	if input == "" {
		return Classification{}
	}

	switch {
	case schemeURL.MatchString(input):
		u, err := url.Parse(input)
		if err != nil || u.Host == "" {
			return Classification{}
		}
		return Classification{IsURL: true, Normalized: input}
	case bareURL.MatchString(input):
		return Classification{IsURL: true, Normalized: NormalizeURL(input)}
	}
	return Classification{}
}

// NormalizeURL prefixes https:// when raw has no http(s) scheme.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// ExtractURLs extracts all HTTP(S) URLs from the input text, first occurrence first.
func ExtractURLs(input string) []string {
	if input == "" {
		return nil
	}
	matches := urlRegex.FindAllString(input, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var urls []string
	for _, u := range matches {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	return urls
}
