package processing

import "strings"

// DefaultGenericPhrases are boilerplate fragments the content search service
// returns when it has nothing to say.
var DefaultGenericPhrases = []string{
	"no specific information found",
	"no information found",
	"no relevant information",
	"no relevant articles",
	"couldn't find",
	"could not find",
	"unable to find",
	"i don't have",
	"i do not have",
	"not enough information",
	"no results found",
}

// GenericMatcher recognises generic no-information answers.
type GenericMatcher struct {
	phrases []string
}

// NewGenericMatcher lower-cases phrases; an empty list falls back to DefaultGenericPhrases.
func NewGenericMatcher(phrases []string) *GenericMatcher {
	if len(phrases) == 0 {
		phrases = DefaultGenericPhrases
	}
	m := &GenericMatcher{phrases: make([]string, 0, len(phrases))}
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			m.phrases = append(m.phrases, p)
		}
	}
	return m
}

// IsGeneric reports whether text contains any generic phrase.
func (m *GenericMatcher) IsGeneric(text string) bool {
	text = strings.ToLower(text)
	for _, p := range m.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// HasAnswer is true for non-empty, non-generic text.
func (m *GenericMatcher) HasAnswer(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && !m.IsGeneric(text)
}
