package resolver_test

import (
	"context"
	"errors"
	"sync"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

type searchReply struct {
	resp *upstream.SearchResponse
	err  error
}

// stubSearch replays replies in order, then answers with an empty response.
type stubSearch struct {
	replies []searchReply
	queries []string
	// onCall runs before each reply is served.
	onCall func()
}

func (s *stubSearch) Search(_ context.Context, query string) (*upstream.SearchResponse, error) {
	s.queries = append(s.queries, query)
	if s.onCall != nil {
		s.onCall()
	}
	if len(s.replies) == 0 {
		return &upstream.SearchResponse{}, nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

type stubExtractor struct {
	results []upstream.Extraction
	err     error
	calls   int
}

func (s *stubExtractor) Extract(_ context.Context, _ []string) ([]upstream.Extraction, error) {
	s.calls++
	return s.results, s.err
}

// stubStories answers searches through fn and records every query.
type stubStories struct {
	fn      func(call int, q upstream.StoryQuery) (*upstream.StoryPage, error)
	queries []upstream.StoryQuery
}

func (s *stubStories) SearchStories(_ context.Context, q upstream.StoryQuery) (*upstream.StoryPage, error) {
	s.queries = append(s.queries, q)
	if s.fn == nil {
		return &upstream.StoryPage{}, nil
	}
	return s.fn(len(s.queries), q)
}

func (s *stubStories) searched() []string {
	var out []string
	for _, q := range s.queries {
		if q.SearchText != "" {
			out = append(out, q.SearchText)
		}
	}
	return out
}

func (s *stubStories) unfiltered() int {
	n := 0
	for _, q := range s.queries {
		if q.SearchText == "" {
			n++
		}
	}
	return n
}

type stubRecorder struct {
	mu   sync.Mutex
	recs []models.UnansweredRecord
}

func (s *stubRecorder) Record(_ context.Context, rec models.UnansweredRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *stubRecorder) records() []models.UnansweredRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UnansweredRecord(nil), s.recs...)
}

type stubRisk struct {
	report models.RiskReport
	err    error
	urls   []string
}

func (s *stubRisk) CheckURL(_ context.Context, url string) (models.RiskReport, error) {
	s.urls = append(s.urls, url)
	return s.report, s.err
}

type stubPages struct {
	pages map[string]models.Article
}

func (s *stubPages) Fetch(_ context.Context, url string) (models.Article, error) {
	if a, ok := s.pages[url]; ok {
		return a, nil
	}
	return models.Article{}, errors.New("not found")
}

func article(url, heading string) models.Article {
	return models.Article{URL: url, Heading: heading}
}

func page(articles ...models.Article) *upstream.StoryPage {
	return &upstream.StoryPage{Articles: articles}
}

func urls(articles []models.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.URL)
	}
	return out
}
