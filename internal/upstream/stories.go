package upstream

import (
	"context"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

// StoryQuery is the article search request body.
type StoryQuery struct {
	Tags       []string `json:"tags,omitempty"`
	TimeFilter string   `json:"timeFilter,omitempty"`
	SearchText string   `json:"searchText,omitempty"`
	StartIndex int      `json:"startIndex"`
	Count      int      `json:"count"`
}

// StoryPage is one page of story search results.
type StoryPage struct {
	Articles []models.Article `json:"articles"`
	HasMore  bool             `json:"hasMore"`
}

// StoryClient calls the article/story search endpoint.
type StoryClient struct {
	base
}

// NewStoryClient returns a client for the article search endpoint.
func NewStoryClient(endpoint string, opts ...Option) *StoryClient {
	return &StoryClient{base: newBase("stories", endpoint, opts)}
}

type storiesResponse struct {
	Success  bool `json:"success"`
	Articles []struct {
		URL  string      `json:"url"`
		Data articleData `json:"data"`
	} `json:"articles"`
	Pagination *struct {
		HasMore bool `json:"hasMore"`
	} `json:"pagination"`
}

// SearchStories fetches one page. A reply without success is reported as a
// remote error so callers can tell it apart from an empty page.
func (c *StoryClient) SearchStories(ctx context.Context, q StoryQuery) (*StoryPage, error) {
	var resp storiesResponse
	if err := c.postJSON(ctx, q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, apperr.Remote(c.name, "unsuccessful story search")
	}

	page := &StoryPage{Articles: make([]models.Article, 0, len(resp.Articles))}
	for _, item := range resp.Articles {
		a := item.Data.toArticle(item.URL)
		if a.URL == "" {
			continue
		}
		page.Articles = append(page.Articles, a)
	}
	if resp.Pagination != nil {
		page.HasMore = resp.Pagination.HasMore
	}
	return page, nil
}
