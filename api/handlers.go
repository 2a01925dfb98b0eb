package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/catalog"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/resolver"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

const (
	maxBodyBytes      = 1 << 20
	defaultStoryCount = 6
	maxStoryCount     = 50
)

type analyzer interface {
	Analyze(ctx context.Context, input string) resolver.Analysis
	Resolve(ctx context.Context, query string, opts ...resolver.ResolveOption) models.SearchResult
}

type server struct {
	log      *slog.Logger
	resolver analyzer
	risk     resolver.RiskChecker
	stories  resolver.StorySearcher
	// resolveTimeout bounds a resolution once it is detached from the request.
	resolveTimeout time.Duration
}

// resolveContext keeps a started resolution running when the client goes
// away, bounded by resolveTimeout.
func (s *server) resolveContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if s.resolveTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.resolveTimeout)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Input string `json:"input"`
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "input is required"})
		return
	}

	ctx, cancel := s.resolveContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, s.resolver.Analyze(ctx, input))
}

type searchRequest struct {
	Query    string `json:"query"`
	SkipSave bool   `json:"skipSave"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "query is required"})
		return
	}

	var opts []resolver.ResolveOption
	if req.SkipSave {
		opts = append(opts, resolver.SkipPersist())
	}
	ctx, cancel := s.resolveContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, s.resolver.Resolve(ctx, query, opts...))
}

type checkURLRequest struct {
	URL string `json:"url"`
}

type checkURLResponse struct {
	URL        string            `json:"url"`
	Prediction models.RiskReport `json:"prediction"`
	Band       string            `json:"band,omitempty"`
}

func (s *server) handleCheckURL(w http.ResponseWriter, r *http.Request) {
	var req checkURLRequest
	if !decodeBody(w, r, &req) {
		return
	}
	url := processing.NormalizeURL(req.URL)
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	report, err := s.risk.CheckURL(r.Context(), url)
	if err != nil {
		s.log.Warn("url check failed", slog.String("url", url), slog.Any("err", err))
		writeJSON(w, upstreamStatus(err), errorResponse{Error: "check failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkURLResponse{URL: url, Prediction: report, Band: report.Band()})
}

type storiesRequest struct {
	Category   string `json:"category"`
	TimeFilter string `json:"timeFilter"`
	SearchText string `json:"searchText"`
	StartIndex int    `json:"startIndex"`
	Count      int    `json:"count"`
}

type storyCard struct {
	models.Article
	CardCategory string `json:"cardCategory"`
}

type storiesResponse struct {
	Articles  []storyCard `json:"articles"`
	HasMore   bool        `json:"hasMore"`
	NextIndex int         `json:"nextIndex"`
}

func (s *server) handleStories(w http.ResponseWriter, r *http.Request) {
	var req storiesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	count := req.Count
	if count <= 0 {
		count = defaultStoryCount
	}
	count = min(count, maxStoryCount)
	start := max(req.StartIndex, 0)

	page, err := s.stories.SearchStories(r.Context(), upstream.StoryQuery{
		Tags:       catalog.TagsFor(req.Category),
		TimeFilter: catalog.TimeFilter(req.TimeFilter),
		SearchText: strings.TrimSpace(req.SearchText),
		StartIndex: start,
		Count:      count,
	})
	if err != nil {
		s.log.Warn("story search failed", slog.Any("err", err))
		writeJSON(w, upstreamStatus(err), errorResponse{Error: err.Error()})
		return
	}

	cards := make([]storyCard, 0, len(page.Articles))
	for _, a := range page.Articles {
		cards = append(cards, storyCard{Article: a, CardCategory: catalog.CardCategory(a.Tags)})
	}
	writeJSON(w, http.StatusOK, storiesResponse{
		Articles:  cards,
		HasMore:   page.HasMore,
		NextIndex: start + len(page.Articles),
	})
}

func (s *server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Categories)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func upstreamStatus(err error) int {
	if apperr.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
