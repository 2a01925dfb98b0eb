package models

// SearchResult is the outcome of one query resolution.
//
// Found is true when Answer holds a real (non-generic) answer or Articles is
// non-empty. Answer is never empty: an explanatory message stands in when no
// real answer exists.
type SearchResult struct {
	Found             bool      `json:"found"`
	Answer            string    `json:"answer"`
	Articles          []Article `json:"articles"`
	SuggestedKeywords []string  `json:"suggestedKeywords,omitempty"`
	Error             bool      `json:"error,omitempty"`
	ErrorKind         string    `json:"errorKind,omitempty"`
}

// Merge overlays a follow-up result onto r. Empty fields in next keep the
// values already present, the way a shallow object spread would.
func (r SearchResult) Merge(next SearchResult) SearchResult {
	out := r
	out.Found = next.Found
	out.Error = next.Error
	out.ErrorKind = next.ErrorKind
	if next.Answer != "" {
		out.Answer = next.Answer
	}
	if next.Articles != nil {
		out.Articles = next.Articles
	}
	if len(next.SuggestedKeywords) > 0 {
		out.SuggestedKeywords = next.SuggestedKeywords
	}
	return out
}
