package processing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  processing.Classification
	}{
		{name: "empty", input: "   ", want: processing.Classification{}},
		{name: "scheme url", input: "https://x.com", want: processing.Classification{IsURL: true, Normalized: "https://x.com"}},
		{name: "bare domain", input: "x.com", want: processing.Classification{IsURL: true, Normalized: "https://x.com"}},
		{name: "trimmed", input: "  gifttowallet.com/claim?id=1 ", want: processing.Classification{IsURL: true, Normalized: "https://gifttowallet.com/claim?id=1"}},
		{name: "ip with port", input: "http://123.9.85.16:58003/bin.sh", want: processing.Classification{IsURL: true, Normalized: "http://123.9.85.16:58003/bin.sh"}},
		{name: "bare domain with port", input: "shop.example.in:8443/pay", want: processing.Classification{IsURL: true, Normalized: "https://shop.example.in:8443/pay"}},
		{name: "mixed text", input: "check https://x.com now", want: processing.Classification{}},
		{name: "message with link", input: "Your parcel is held: https://indiapots.com/in", want: processing.Classification{}},
		{name: "plain words", input: "lottery winner", want: processing.Classification{}},
		{name: "numeric tld", input: "10.5", want: processing.Classification{}},
		{name: "abbreviation", input: "e.g.", want: processing.Classification{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.Classify(tt.input))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	require.Equal(t, "", processing.NormalizeURL(" "))
	require.Equal(t, "https://x.com", processing.NormalizeURL("x.com"))
	require.Equal(t, "HTTP://x.com", processing.NormalizeURL("HTTP://x.com"))
}

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "no urls", input: "Hello world", want: nil},
		{name: "single url", input: "Check https://example.com for more", want: []string{"https://example.com"}},
		{name: "duplicate urls", input: "https://example.com and https://example.com again", want: []string{"https://example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.ExtractURLs(tt.input))
		})
	}
}
