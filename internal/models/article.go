package models

import (
	"encoding/json"
	"strings"
)

// Article is a fact-check story summary. URL is its identity.
type Article struct {
	URL         string `json:"url"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
	ThumbURL    string `json:"thumbUrl"`
	PublishDate string `json:"publishDate,omitempty"`
	CreatedDate string `json:"createdDate,omitempty"`
	Tags        Tags   `json:"tags,omitempty"`
	Author      string `json:"author,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Tags accepts either a JSON array or a comma separated string.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = compact(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// unknown shapes (numbers, objects) are ignored rather than failing the whole payload
		*t = nil
		return nil
	}
	*t = compact(strings.Split(raw, ","))
	return nil
}

func compact(in []string) Tags {
	out := make(Tags, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
