package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeQuery lower-cases q and squeezes whitespace.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(q), " "))
}

// BuildRecordID hashes the normalized query and category so repeated questions
// collapse onto one research document.
func BuildRecordID(query, category string) string {
	s := sha1.Sum([]byte(NormalizeQuery(query) + "|" + strings.ToLower(strings.TrimSpace(category))))
	return hex.EncodeToString(s[:])
}
