// Package resolver turns a user query into a SearchResult by chaining the
// content search, article extraction and story padding services, and records
// the queries nothing could answer.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

// User-facing answers used when the search service has no real answer.
const (
	MessageNoAnswer = "No Specific Information Found. We couldn't find specific stories matching your input, " +
		"but please be cautious. Do not click on suspicious links or share personal information. " +
		"Our team will investigate this content from our end and update our database if it's a known scam."
	MessageRelated = "Scam Alert: related stories found. Read them before you respond, " +
		"and do not click on suspicious links or share personal information."
	MessageTimeout = "The request timed out, please try again. Meanwhile, do not click on suspicious links " +
		"or share personal information."
)

const unansweredCategory = "unanswered"

// Searcher asks the content search service a question.
type Searcher interface {
	Search(ctx context.Context, query string) (*upstream.SearchResponse, error)
}

// Extractor fetches article metadata for source URLs.
type Extractor interface {
	Extract(ctx context.Context, urls []string) ([]upstream.Extraction, error)
}

// PageFetcher reads article metadata straight from a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (models.Article, error)
}

// RiskChecker scores a single URL.
type RiskChecker interface {
	CheckURL(ctx context.Context, url string) (models.RiskReport, error)
}

// Recorder receives unanswered queries. Record must not block on delivery.
type Recorder interface {
	Record(ctx context.Context, rec models.UnansweredRecord)
}

// Config holds the resolution tunables.
type Config struct {
	MinArticles     int
	PaddingKeywords int
	RetryKeywords   int
	RecentBatch     int
	FollowUp        bool
	GenericPhrases  []string
}

// DefaultConfig matches the production deployment.
func DefaultConfig() Config {
	return Config{
		MinArticles:     4,
		PaddingKeywords: 5,
		RetryKeywords:   6,
		RecentBatch:     defaultRecentBatch,
		FollowUp:        true,
	}
}

// Deps are the collaborators of a Resolver. Pages and Risk may be nil.
type Deps struct {
	Search   Searcher
	Extract  Extractor
	Stories  StorySearcher
	Pages    PageFetcher
	Risk     RiskChecker
	Recorder Recorder
}

// Resolver turns a user question into a SearchResult and records the ones
// it could not answer.
type Resolver struct {
	deps    Deps
	cfg     Config
	padder  *Padder
	generic *processing.GenericMatcher
	log     *slog.Logger
}

// New builds a Resolver. Non-positive counts in cfg take DefaultConfig values.
func New(deps Deps, cfg Config, log *slog.Logger) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	def := DefaultConfig()
	if cfg.MinArticles <= 0 {
		cfg.MinArticles = def.MinArticles
	}
	if cfg.PaddingKeywords <= 0 {
		cfg.PaddingKeywords = def.PaddingKeywords
	}
	if cfg.RetryKeywords <= 0 {
		cfg.RetryKeywords = def.RetryKeywords
	}
	return &Resolver{
		deps:    deps,
		cfg:     cfg,
		padder:  NewPadder(deps.Stories, log, cfg.RecentBatch),
		generic: processing.NewGenericMatcher(cfg.GenericPhrases),
		log:     log,
	}
}

type resolveOptions struct {
	skipPersist bool
}

// ResolveOption adjusts a single Resolve call.
type ResolveOption func(*resolveOptions)

// SkipPersist keeps an unanswered resolution from being recorded. Follow-up
// resolutions use it so one user question is recorded at most once.
func SkipPersist() ResolveOption {
	return func(o *resolveOptions) {
		o.skipPersist = true
	}
}

// saveDecision is set by whichever stage gives up; it is read once when
// Resolve returns.
type saveDecision struct {
	reason string
}

func (s *saveDecision) mark(reason string) {
	if s.reason == "" {
		s.reason = reason
	}
}

// Resolve answers query. It never fails: upstream errors become a
// not-found result with Error set.
func (r *Resolver) Resolve(ctx context.Context, query string, opts ...ResolveOption) (res models.SearchResult) {
	var o resolveOptions
	for _, opt := range opts {
		opt(&o)
	}

	query = strings.TrimSpace(query)
	save := &saveDecision{}
	defer func() {
		r.finish(ctx, query, o, save, res)
	}()

	if query == "" {
		return notFound(MessageNoAnswer)
	}

	primary, err := r.attempt(ctx, query, query, true)
	if err != nil {
		r.log.Warn("primary search failed", slog.String("query", query), slog.Any("err", err))
		save.mark("API Error: " + err.Error())
		return errorResult(err)
	}
	if primary.Found {
		return primary
	}

	keywords := processing.ExtractKeywords(query, r.cfg.RetryKeywords)
	if len(keywords) == 0 {
		save.mark("No response from search API")
		return primary
	}
	primary.SuggestedKeywords = keywords

	retryQuery := strings.Join(keywords, " ")
	retry, err := r.attempt(ctx, retryQuery, query, false)
	switch {
	case err != nil:
		r.log.Warn("keyword retry failed", slog.String("retry_query", retryQuery), slog.Any("err", err))
	case retry.Found:
		retry.SuggestedKeywords = keywords
		return retry
	}

	if articles := r.padder.Pad(ctx, keywords, r.cfg.MinArticles, nil); len(articles) > 0 {
		primary.Found = true
		primary.Articles = articles
		primary.Answer = MessageRelated
		return primary
	}

	save.mark(fmt.Sprintf("Retry exhausted: no answer or stories for %q", retryQuery))
	return primary
}

func (r *Resolver) finish(ctx context.Context, query string, o resolveOptions, save *saveDecision, res models.SearchResult) {
	switch {
	case res.Error:
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
	case res.Found:
		metrics.ResolutionsTotal.WithLabelValues("found").Inc()
	default:
		metrics.ResolutionsTotal.WithLabelValues("not_found").Inc()
	}

	if res.Found || save.reason == "" || o.skipPersist || r.deps.Recorder == nil {
		return
	}
	// A caller that walked away did not leave the question unanswered.
	if errors.Is(ctx.Err(), context.Canceled) {
		r.log.Debug("resolution canceled by caller, not recording", slog.String("query", query))
		return
	}
	r.deps.Recorder.Record(ctx, models.UnansweredRecord{
		Query:    query,
		Category: unansweredCategory,
		Reason:   save.reason,
	})
}

// attempt runs one search pass. Padding keywords always come from
// keywordSource, the user's original query. directPad pads when the search
// returns no sources at all.
func (r *Resolver) attempt(ctx context.Context, searchQuery, keywordSource string, directPad bool) (models.SearchResult, error) {
	resp, err := r.deps.Search.Search(ctx, searchQuery)
	if err != nil {
		return models.SearchResult{}, err
	}

	articles := []models.Article{}
	urls := uniqueStrings(resp.SourceURLs)
	switch {
	case len(urls) > 0:
		articles = r.extract(ctx, urls)
		if len(articles) < r.cfg.MinArticles {
			articles = r.topUp(ctx, keywordSource, articles)
		}
	case directPad:
		kw := processing.ExtractKeywords(keywordSource, r.cfg.PaddingKeywords)
		if padded := r.padder.Pad(ctx, kw, r.cfg.MinArticles, nil); len(padded) > 0 {
			articles = padded
		}
	}

	hasAnswer := r.generic.HasAnswer(resp.Answer)
	res := models.SearchResult{
		Found:    hasAnswer || len(articles) > 0,
		Articles: articles,
	}
	switch {
	case hasAnswer:
		res.Answer = strings.TrimSpace(resp.Answer)
	case len(articles) > 0:
		res.Answer = MessageRelated
	default:
		res.Answer = MessageNoAnswer
	}
	return res, nil
}

// extract treats extractor failure as zero articles.
func (r *Resolver) extract(ctx context.Context, urls []string) []models.Article {
	results, err := r.deps.Extract.Extract(ctx, urls)
	if err != nil {
		r.log.Warn("article extraction failed", slog.Int("urls", len(urls)), slog.Any("err", err))
		return []models.Article{}
	}

	articles := upstream.Succeeded(results)
	if r.deps.Pages != nil {
		articles = append(articles, r.fetchPages(ctx, urls, results)...)
	}
	return dedupeArticles(articles)
}

// fetchPages reads metadata directly for URLs the extractor did not deliver.
func (r *Resolver) fetchPages(ctx context.Context, urls []string, results []upstream.Extraction) []models.Article {
	delivered := make(map[string]struct{}, len(results))
	for _, e := range results {
		if e.OK() {
			delivered[e.URL] = struct{}{}
		}
	}

	var out []models.Article
	for _, u := range urls {
		if _, ok := delivered[u]; ok {
			continue
		}
		a, err := r.deps.Pages.Fetch(ctx, u)
		if err != nil {
			r.log.Debug("page metadata fallback failed", slog.String("url", u), slog.Any("err", err))
			continue
		}
		out = append(out, a)
	}
	return out
}

func (r *Resolver) topUp(ctx context.Context, keywordSource string, articles []models.Article) []models.Article {
	kw := processing.ExtractKeywords(keywordSource, r.cfg.PaddingKeywords)
	if len(kw) == 0 {
		return articles
	}

	exclude := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		exclude[a.URL] = struct{}{}
	}
	padded := r.padder.Pad(ctx, kw, r.cfg.MinArticles-len(articles), exclude)

	merged := dedupeArticles(append(articles, padded...))
	if len(merged) > r.cfg.MinArticles {
		merged = merged[:r.cfg.MinArticles]
	}
	return merged
}

func notFound(answer string) models.SearchResult {
	return models.SearchResult{Answer: answer, Articles: []models.Article{}}
}

func errorResult(err error) models.SearchResult {
	res := notFound(MessageNoAnswer)
	res.Error = true
	res.ErrorKind = string(apperr.KindOf(err))
	if apperr.IsTimeout(err) {
		res.Answer = MessageTimeout
	}
	return res
}

func dedupeArticles(in []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Article, 0, len(in))
	for _, a := range in {
		if a.URL == "" {
			continue
		}
		if _, ok := seen[a.URL]; ok {
			continue
		}
		seen[a.URL] = struct{}{}
		out = append(out, a)
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
