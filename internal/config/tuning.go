package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tuning is the optional YAML file adjusting answer classification.
//
//	generic_phrases:
//	  - no specific information found
//	  - unable to find
type Tuning struct {
	GenericPhrases []string `yaml:"generic_phrases"`
}

// LoadTuning reads path. An empty path yields an empty Tuning.
func LoadTuning(path string) (*Tuning, error) {
	if strings.TrimSpace(path) == "" {
		return &Tuning{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tuning file: %w", err)
	}
	defer f.Close()

	return DecodeTuning(f)
}

// DecodeTuning parses a tuning document and drops blank phrases.
func DecodeTuning(r io.Reader) (*Tuning, error) {
	var t Tuning
	if err := yaml.NewDecoder(r).Decode(&t); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode tuning file: %w", err)
	}

	phrases := t.GenericPhrases[:0]
	for _, p := range t.GenericPhrases {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	t.GenericPhrases = phrases
	return &t, nil
}
