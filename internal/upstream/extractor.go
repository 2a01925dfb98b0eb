package upstream

import (
	"context"
	"errors"
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

// ErrExtractionFailed marks a URL the extractor could not process.
var ErrExtractionFailed = errors.New("extraction failed")

// Extraction is the per-URL outcome of a batch extraction.
type Extraction struct {
	URL     string
	Article models.Article
	Err     error
}

// OK reports whether the URL produced an article.
func (e Extraction) OK() bool {
	return e.Err == nil
}

// Succeeded keeps the articles of successful extractions.
func Succeeded(results []Extraction) []models.Article {
	out := make([]models.Article, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Article)
		}
	}
	return out
}

// ExtractorClient calls the article metadata extraction endpoint.
type ExtractorClient struct {
	base
}

// NewExtractorClient returns a client for the article extractor endpoint.
func NewExtractorClient(endpoint string, opts ...Option) *ExtractorClient {
	return &ExtractorClient{base: newBase("extractor", endpoint, opts)}
}

type extractResponse struct {
	Success bool `json:"success"`
	Results []struct {
		URL     string       `json:"url"`
		Success bool         `json:"success"`
		Data    *articleData `json:"data"`
		Error   string       `json:"error"`
	} `json:"results"`
}

// Extract returns one Extraction per reported URL. Only transport, status and
// decode failures produce an error; an unsuccessful envelope yields no results.
func (c *ExtractorClient) Extract(ctx context.Context, urls []string) ([]Extraction, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	var resp extractResponse
	if err := c.postJSON(ctx, map[string][]string{"urls": urls}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, nil
	}

	out := make([]Extraction, 0, len(resp.Results))
	for _, r := range resp.Results {
		url := strings.TrimSpace(r.URL)
		if !r.Success || r.Data == nil || url == "" {
			err := ErrExtractionFailed
			if r.Error != "" {
				err = errors.Join(ErrExtractionFailed, errors.New(r.Error))
			}
			out = append(out, Extraction{URL: url, Err: err})
			continue
		}
		out = append(out, Extraction{URL: url, Article: r.Data.toArticle(url)})
	}
	return out, nil
}
