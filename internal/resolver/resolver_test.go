package resolver_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/resolver"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

type fixture struct {
	search   *stubSearch
	extract  *stubExtractor
	stories  *stubStories
	recorder *stubRecorder
	risk     *stubRisk
	pages    *stubPages
}

func newFixture() *fixture {
	return &fixture{
		search:   &stubSearch{},
		extract:  &stubExtractor{},
		stories:  &stubStories{},
		recorder: &stubRecorder{},
		risk:     &stubRisk{},
	}
}

func (f *fixture) resolver(cfg resolver.Config) *resolver.Resolver {
	deps := resolver.Deps{
		Search:   f.search,
		Extract:  f.extract,
		Stories:  f.stories,
		Risk:     f.risk,
		Recorder: f.recorder,
	}
	if f.pages != nil {
		deps.Pages = f.pages
	}
	return resolver.New(deps, cfg, logger.Discard())
}

func TestResolveScenarioPaddingFallbackAfterEmptyRetry(t *testing.T) {
	f := newFixture()
	f.stories.fn = func(_ int, q upstream.StoryQuery) (*upstream.StoryPage, error) {
		if q.SearchText != "" {
			return page(), nil
		}
		// The first recent-stories fetch belongs to the primary attempt.
		if len(f.search.queries) < 2 {
			return nil, apperr.Status("stories", 503, "unavailable")
		}
		return page(
			models.Article{URL: "https://boom/weather", Heading: "Weather update for Mumbai commuters"},
			models.Article{URL: "https://boom/ponzi", Heading: "Ponzi app promised 5x profit", Description: "Victims lost savings"},
			models.Article{URL: "https://boom/fake-site", Heading: "Fake trading site", Description: "How to invest safely"},
		), nil
	}

	query := "Earn 5x profit in 7 days, invest now at scam-site.biz"
	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), query)

	require.True(t, res.Found)
	require.False(t, res.Error)
	require.Equal(t, []string{"https://boom/ponzi", "https://boom/fake-site"}, urls(res.Articles))
	require.Equal(t, []string{"profit", "invest", "earn", "days", "scam", "site"}, res.SuggestedKeywords)
	require.NotEmpty(t, res.Answer)
	require.Equal(t, []string{query, "profit invest earn days scam site"}, f.search.queries)
	require.Equal(t, 2, f.stories.unfiltered())
	require.Empty(t, f.recorder.records())
}

func TestResolveScenarioPadsExtractedArticlesToFour(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{resp: &upstream.SearchResponse{
		Answer:     "This is a known electricity bill disconnection scam.",
		SourceURLs: []string{"https://boom/electricity-bill"},
	}}}
	f.extract.results = []upstream.Extraction{
		{URL: "https://boom/electricity-bill", Article: article("https://boom/electricity-bill", "Electricity bill scam")},
	}
	f.stories.fn = func(_ int, _ upstream.StoryQuery) (*upstream.StoryPage, error) {
		return page(
			article("https://boom/electricity-bill", "duplicate"),
			article("https://boom/a", "a"),
			article("https://boom/b", "b"),
			article("https://boom/c", "c"),
			article("https://boom/d", "d"),
		), nil
	}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "Electricity bill not paid, power will be cut tonight")

	require.True(t, res.Found)
	require.Equal(t, "This is a known electricity bill disconnection scam.", res.Answer)
	require.Equal(t, []string{"https://boom/electricity-bill", "https://boom/a", "https://boom/b", "https://boom/c"}, urls(res.Articles))
	require.Len(t, f.stories.queries, 1)
	require.Equal(t, 1, f.extract.calls)
	require.Empty(t, f.recorder.records())
}

func TestResolveScenarioTransportError(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{err: apperr.Transport("search", errors.New("connection refused"))}}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "Is this KYC SMS genuine?")

	require.False(t, res.Found)
	require.True(t, res.Error)
	require.Equal(t, resolver.MessageNoAnswer, res.Answer)
	require.NotNil(t, res.Articles)
	require.Empty(t, res.Articles)
	require.Len(t, f.search.queries, 1)

	recs := f.recorder.records()
	require.Len(t, recs, 1)
	require.Equal(t, "Is this KYC SMS genuine?", recs[0].Query)
	require.Equal(t, "unanswered", recs[0].Category)
	require.True(t, strings.HasPrefix(recs[0].Reason, "API Error: "), recs[0].Reason)
	require.Contains(t, recs[0].Reason, "connection refused")
}

func TestResolveCanceledByCallerIsNotRecorded(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.search.onCall = cancel
	f.search.replies = []searchReply{{err: apperr.Transport("search", context.Canceled)}}

	res := f.resolver(resolver.DefaultConfig()).Resolve(ctx, "lottery prize courier fee")

	require.False(t, res.Found)
	require.True(t, res.Error)
	require.NotEmpty(t, res.Answer)
	require.Empty(t, f.recorder.records())
}

func TestResolveTimeoutHasDistinctMessage(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{err: apperr.Timeout("search", "deadline exceeded")}}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "courier parcel held at customs")

	require.True(t, res.Error)
	require.Equal(t, resolver.MessageTimeout, res.Answer)
	require.Equal(t, string(apperr.KindTimeout), res.ErrorKind)
	require.Len(t, f.recorder.records(), 1)
}

func TestResolveGenericAnswerTriggersRetry(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{
		{resp: &upstream.SearchResponse{Answer: "No specific information found..."}},
		{resp: &upstream.SearchResponse{Answer: "Fake job offers on Telegram ask for a registration fee."}},
	}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "Telegram job offer registration fee")

	require.True(t, res.Found)
	require.Equal(t, "Fake job offers on Telegram ask for a registration fee.", res.Answer)
	require.Len(t, f.search.queries, 2)
	require.Equal(t, strings.Join(res.SuggestedKeywords, " "), f.search.queries[1])
	require.Empty(t, f.recorder.records())
}

func TestResolveRetryReplacesPrimaryResult(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{
		{resp: &upstream.SearchResponse{}},
		{resp: &upstream.SearchResponse{SourceURLs: []string{"https://boom/retry"}}},
	}
	f.extract.results = []upstream.Extraction{
		{URL: "https://boom/retry", Article: article("https://boom/retry", "retry")},
	}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "lucky draw winner whatsapp")

	require.True(t, res.Found)
	require.Equal(t, resolver.MessageRelated, res.Answer)
	require.Equal(t, []string{"https://boom/retry"}, urls(res.Articles))
	require.NotEmpty(t, res.SuggestedKeywords)
}

func TestResolveRecordsOnceWhenEverythingIsEmpty(t *testing.T) {
	f := newFixture()
	f.stories.fn = func(_ int, _ upstream.StoryQuery) (*upstream.StoryPage, error) {
		return nil, errors.New("stories down")
	}
	f.extract.err = errors.New("extractor down")

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "refund call from fake bank officer")

	require.False(t, res.Found)
	require.False(t, res.Error)
	require.Equal(t, resolver.MessageNoAnswer, res.Answer)
	require.Len(t, f.search.queries, 2)
	require.Equal(t, 2, f.stories.unfiltered())

	recs := f.recorder.records()
	require.Len(t, recs, 1)
	require.True(t, strings.HasPrefix(recs[0].Reason, "Retry exhausted"), recs[0].Reason)
}

func TestResolveSkipPersist(t *testing.T) {
	f := newFixture()

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "refund call from fake bank officer", resolver.SkipPersist())

	require.False(t, res.Found)
	require.Empty(t, f.recorder.records())
}

func TestResolveNoKeywords(t *testing.T) {
	f := newFixture()

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "is it?")

	require.False(t, res.Found)
	require.Empty(t, res.SuggestedKeywords)
	require.Len(t, f.search.queries, 1)

	recs := f.recorder.records()
	require.Len(t, recs, 1)
	require.Equal(t, "No response from search API", recs[0].Reason)
}

func TestResolveExtractorFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{resp: &upstream.SearchResponse{
		Answer:     "Digital arrest calls impersonate police officers.",
		SourceURLs: []string{"https://boom/x"},
	}}}
	f.extract.err = apperr.Status("extractor", 500, "boom")
	f.stories.fn = func(_ int, _ upstream.StoryQuery) (*upstream.StoryPage, error) {
		return page(article("https://boom/padded", "padded")), nil
	}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "digital arrest police video call")

	require.True(t, res.Found)
	require.False(t, res.Error)
	require.Equal(t, []string{"https://boom/padded"}, urls(res.Articles))
}

func TestResolveArticlesAreUnique(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{resp: &upstream.SearchResponse{
		SourceURLs: []string{"https://boom/1", "https://boom/1", "https://boom/2"},
	}}}
	f.extract.results = []upstream.Extraction{
		{URL: "https://boom/1", Article: article("https://boom/1", "one")},
		{URL: "https://boom/1", Article: article("https://boom/1", "one again")},
		{URL: "https://boom/2", Err: upstream.ErrExtractionFailed},
	}
	f.stories.fn = func(_ int, _ upstream.StoryQuery) (*upstream.StoryPage, error) {
		return page(article("https://boom/1", "dup"), article("https://boom/3", "three"), article("https://boom/3", "three")), nil
	}

	res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), "upi collect request cashback")

	require.Equal(t, []string{"https://boom/1", "https://boom/3"}, urls(res.Articles))
}

func TestResolvePageFallbackFillsFailedExtractions(t *testing.T) {
	f := newFixture()
	f.search.replies = []searchReply{{resp: &upstream.SearchResponse{
		Answer:     "A known fake customs duty scam.",
		SourceURLs: []string{"https://boom/ok", "https://boom/failed"},
	}}}
	f.extract.results = []upstream.Extraction{
		{URL: "https://boom/ok", Article: article("https://boom/ok", "ok")},
		{URL: "https://boom/failed", Err: upstream.ErrExtractionFailed},
	}
	f.pages = &stubPages{pages: map[string]models.Article{
		"https://boom/failed": article("https://boom/failed", "from page"),
	}}

	cfg := resolver.DefaultConfig()
	cfg.MinArticles = 2
	res := f.resolver(cfg).Resolve(context.Background(), "customs duty parcel gift")

	require.Equal(t, []string{"https://boom/ok", "https://boom/failed"}, urls(res.Articles))
	require.Empty(t, f.stories.queries)
}

func TestResolveAnswerNeverEmpty(t *testing.T) {
	cases := map[string][]searchReply{
		"transport error": {{err: errors.New("dial tcp: refused")}},
		"timeout":         {{err: apperr.Timeout("search", "slow")}},
		"empty":           nil,
		"whitespace":      {{resp: &upstream.SearchResponse{Answer: "   "}}},
		"generic":         {{resp: &upstream.SearchResponse{Answer: "I couldn't find anything about that."}}},
		"real answer":     {{resp: &upstream.SearchResponse{Answer: "Known scam."}}},
		"retry error":     {{resp: &upstream.SearchResponse{}}, {err: errors.New("refused")}},
	}

	for name, replies := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.search.replies = replies
			for _, q := range []string{"sbi yono account blocked pan update", "", "a"} {
				res := f.resolver(resolver.DefaultConfig()).Resolve(context.Background(), q)
				require.NotEmpty(t, strings.TrimSpace(res.Answer))
			}
		})
	}
}
