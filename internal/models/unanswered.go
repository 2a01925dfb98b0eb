package models

import "time"

// UnansweredRecord is a query nothing could answer, queued for human research.
type UnansweredRecord struct {
	ID        string `json:"id,omitempty"`
	Query     string `json:"query"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

// UnansweredDocument is the research index representation of a record.
// Repeats of the same question bump Occurrences and LastSeen.
type UnansweredDocument struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Category    string    `json:"category"`
	Reason      string    `json:"reason"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
	LastSeen    time.Time `json:"last_seen"`
	Occurrences int       `json:"occurrences"`
	Keywords    []string  `json:"keywords"`
	URLs        []string  `json:"urls,omitempty"`
}
