package processing

import (
	"sort"
	"strings"
	"unicode"
)

var stopwords = toSet(
	"a", "about", "after", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "but", "by", "can", "could", "dear", "did", "do",
	"does", "doing", "for", "from", "get", "got", "had", "has", "have", "he", "hello",
	"her", "here", "hi", "him", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"just", "let", "lets", "me", "more", "my", "no", "not", "now", "of", "on", "only",
	"or", "our", "out", "please", "real", "really", "she", "should", "so", "some",
	"than", "that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "to", "too", "true", "up", "us", "very", "was", "we", "were", "what",
	"when", "where", "which", "who", "why", "will", "with", "would", "yes", "you",
	"your", "yours",
)

// IsStopword reports whether token is ignored by ExtractKeywords.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// ExtractKeywords returns up to max salient tokens of text ranked by frequency,
// then by length. Ties keep first-occurrence order. max <= 0 returns them all.
func ExtractKeywords(text string, max int) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	text = strings.NewReplacer("'", "", "’", "", "`", "").Replace(text)

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	type kw struct {
		word  string
		count int
		first int
		runes int
	}

	index := make(map[string]int)
	var ranked []kw
	for pos, token := range tokens {
		n := len([]rune(token))
		if n < 2 || isNumeric(token) || IsStopword(token) {
			continue
		}
		if i, ok := index[token]; ok {
			ranked[i].count++
			continue
		}
		index[token] = len(ranked)
		ranked = append(ranked, kw{word: token, count: 1, first: pos, runes: n})
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		if ranked[i].runes != ranked[j].runes {
			return ranked[i].runes > ranked[j].runes
		}
		return ranked[i].first < ranked[j].first
	})

	if max <= 0 || max > len(ranked) {
		max = len(ranked)
	}
	out := make([]string, 0, max)
	for _, k := range ranked[:max] {
		out = append(out, k.word)
	}
	return out
}

// Bigrams joins each adjacent keyword pair with a space.
func Bigrams(keywords []string) []string {
	if len(keywords) < 2 {
		return nil
	}
	out := make([]string, 0, len(keywords)-1)
	for i := 0; i+1 < len(keywords); i++ {
		out = append(out, keywords[i]+" "+keywords[i+1])
	}
	return out
}

func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
