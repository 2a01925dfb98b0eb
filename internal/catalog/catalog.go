// Package catalog holds the scam categories and filters used to browse stories.
package catalog

import "strings"

// Category is a story filter exposed to the browsing UI.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Categories in display order. "all" carries no tag filter.
var Categories = []Category{
	{Key: "all", Label: "All"},
	{Key: "finance", Label: "Finance Scam"},
	{Key: "romance", Label: "Romance Scam"},
	{Key: "schemes", Label: "Schemes Scam"},
	{Key: "medical", Label: "Medical Scam"},
	{Key: "gift", Label: "Gift Scam"},
	{Key: "digital", Label: "Digital Arrest"},
	{Key: "phishing", Label: "Phishing Scam"},
	{Key: "job", Label: "Job Scam"},
}

var timeFilters = map[string]string{
	"today":    "today",
	"week":     "this-week",
	"month":    "this-month",
	"quarter":  "last-3-months",
	"all-time": "all-time",
}

// DefaultTimeFilter is used for unknown or empty time filter keys.
const DefaultTimeFilter = "all-time"

// TagsFor returns the tag filter for a category key; nil means no filter.
func TagsFor(key string) []string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" || key == "all" {
		return nil
	}
	for _, c := range Categories {
		if c.Key == key {
			return []string{c.Label}
		}
	}
	return nil
}

// TimeFilter maps a UI time key onto the story API value.
func TimeFilter(key string) string {
	if v, ok := timeFilters[strings.ToLower(strings.TrimSpace(key))]; ok {
		return v
	}
	return DefaultTimeFilter
}

// CardCategory picks the category key whose name appears in a story's tags,
// falling back to "scam".
func CardCategory(tags []string) string {
	joined := strings.ToLower(strings.Join(tags, " "))
	for _, c := range Categories {
		if c.Key == "all" {
			continue
		}
		if strings.Contains(joined, c.Key) {
			return c.Key
		}
	}
	return "scam"
}
