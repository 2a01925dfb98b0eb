package upstream

import (
	"context"
	"log/slog"
)

// SearchResponse is the content search reply.
type SearchResponse struct {
	Answer     string   `json:"response"`
	SourceURLs []string `json:"sources_url"`
}

// SearchClient calls the natural-language scam search endpoint.
type SearchClient struct {
	base
}

// NewSearchClient returns a client for the content search endpoint.
func NewSearchClient(endpoint string, opts ...Option) *SearchClient {
	return &SearchClient{base: newBase("search", endpoint, opts)}
}

// Search runs one query. Any failure, including a non-2xx status, is returned.
func (c *SearchClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.postJSON(ctx, map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}
	c.log.Debug("search answered",
		slog.Int("answer_len", len(resp.Answer)),
		slog.Int("sources", len(resp.SourceURLs)),
	)
	return &resp, nil
}
