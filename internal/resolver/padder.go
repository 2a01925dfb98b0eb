package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

const (
	minStoryCount      = 6
	defaultRecentBatch = 50
)

// StorySearcher is the article search endpoint used for padding.
type StorySearcher interface {
	SearchStories(ctx context.Context, q upstream.StoryQuery) (*upstream.StoryPage, error)
}

// Padder tops up short article lists with stories from the search index.
type Padder struct {
	stories     StorySearcher
	log         *slog.Logger
	recentBatch int
}

// NewPadder returns a Padder. A non-positive recentBatch falls back to 50.
func NewPadder(stories StorySearcher, log *slog.Logger, recentBatch int) *Padder {
	if log == nil {
		log = logger.Discard()
	}
	if recentBatch <= 0 {
		recentBatch = defaultRecentBatch
	}
	return &Padder{stories: stories, log: log, recentBatch: recentBatch}
}

// Pad returns at most need unique articles whose URLs are not in exclude.
// Candidates are tried as the full phrase, then adjacent bigrams, then single
// keywords, stopping once need articles are collected. When none of them
// yields anything a batch of recent stories is matched locally. Failures count
// as empty results; Pad never fails.
func (p *Padder) Pad(ctx context.Context, keywords []string, need int, exclude map[string]struct{}) []models.Article {
	if need <= 0 || len(keywords) == 0 {
		return nil
	}

	acc := newCollector(need, exclude)
	for _, candidate := range candidates(keywords) {
		if acc.full() {
			break
		}
		page, err := p.stories.SearchStories(ctx, upstream.StoryQuery{
			SearchText: candidate,
			StartIndex: 0,
			Count:      max(need, minStoryCount),
		})
		if err != nil {
			p.log.Warn("story search failed", slog.String("search_text", candidate), slog.Any("err", err))
			continue
		}
		acc.add(page.Articles...)
	}
	if acc.len() > 0 {
		return acc.articles
	}

	return p.matchRecent(ctx, keywords, acc)
}

func (p *Padder) matchRecent(ctx context.Context, keywords []string, acc *collector) []models.Article {
	page, err := p.stories.SearchStories(ctx, upstream.StoryQuery{StartIndex: 0, Count: p.recentBatch})
	if err != nil {
		p.log.Warn("recent stories fetch failed", slog.Any("err", err))
		return nil
	}

	terms := append(processing.Bigrams(keywords), keywords...)
	for _, a := range page.Articles {
		if acc.full() {
			break
		}
		text := strings.ToLower(a.Heading + " " + a.Description)
		for _, term := range terms {
			if strings.Contains(text, strings.ToLower(term)) {
				acc.add(a)
				break
			}
		}
	}
	p.log.Debug("recent stories matched", slog.Int("scanned", len(page.Articles)), slog.Int("matched", acc.len()))
	return acc.articles
}

// candidates lists the phrase, bigrams and single keywords without repeats.
func candidates(keywords []string) []string {
	seen := make(map[string]struct{})
	var out []string
	push := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	push(strings.Join(keywords, " "))
	for _, b := range processing.Bigrams(keywords) {
		push(b)
	}
	for _, k := range keywords {
		push(k)
	}
	return out
}

// collector accumulates articles unique by URL up to a limit.
type collector struct {
	limit    int
	seen     map[string]struct{}
	articles []models.Article
}

func newCollector(limit int, exclude map[string]struct{}) *collector {
	seen := make(map[string]struct{}, len(exclude)+limit)
	for u := range exclude {
		seen[u] = struct{}{}
	}
	return &collector{limit: limit, seen: seen}
}

func (c *collector) add(articles ...models.Article) {
	for _, a := range articles {
		if c.full() {
			return
		}
		if a.URL == "" {
			continue
		}
		if _, ok := c.seen[a.URL]; ok {
			continue
		}
		c.seen[a.URL] = struct{}{}
		c.articles = append(c.articles, a)
	}
}

func (c *collector) full() bool {
	return c.limit > 0 && len(c.articles) >= c.limit
}

func (c *collector) len() int {
	return len(c.articles)
}
