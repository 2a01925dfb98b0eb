package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

func jsonServer(t *testing.T, status int, reply string, capture *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(capture)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchClient(t *testing.T) {
	var body map[string]any
	srv := jsonServer(t, http.StatusOK, `{"response":"It is a scam.","sources_url":["https://boomlive.in/a"]}`, &body)

	resp, err := upstream.NewSearchClient(srv.URL).Search(context.Background(), "free recharge")
	require.NoError(t, err)
	require.Equal(t, "free recharge", body["query"])
	require.Equal(t, "It is a scam.", resp.Answer)
	require.Equal(t, []string{"https://boomlive.in/a"}, resp.SourceURLs)
}

func TestSearchClientNon2xx(t *testing.T) {
	srv := jsonServer(t, http.StatusBadGateway, `upstream down`, nil)

	_, err := upstream.NewSearchClient(srv.URL).Search(context.Background(), "q")
	require.Error(t, err)
	require.Equal(t, apperr.KindStatus, apperr.KindOf(err))
	require.Contains(t, err.Error(), "502")
}

func TestSearchClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	_, err := upstream.NewSearchClient(srv.URL, upstream.WithTimeout(20*time.Millisecond)).Search(context.Background(), "q")
	require.Error(t, err)
	require.True(t, apperr.IsTimeout(err))
}

func TestExtractorDropsFailedEntries(t *testing.T) {
	reply := `{"success":true,"results":[
		{"url":"https://boomlive.in/a","success":true,"data":{"heading":"Fake KBC lottery","description":"winner call","thumbUrl":"t.jpg","date_news":"2024-05-01","news_tags":"Scam, Lottery"}},
		{"url":"https://boomlive.in/b","success":false,"error":"timeout"},
		{"url":"https://boomlive.in/c","success":true}
	]}`
	var body map[string]any
	srv := jsonServer(t, http.StatusOK, reply, &body)

	results, err := upstream.NewExtractorClient(srv.URL).Extract(context.Background(), []string{"https://boomlive.in/a", "https://boomlive.in/b", "https://boomlive.in/c"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Len(t, body["urls"], 3)

	require.False(t, results[1].OK())
	require.ErrorIs(t, results[1].Err, upstream.ErrExtractionFailed)

	articles := upstream.Succeeded(results)
	require.Len(t, articles, 1)
	a := articles[0]
	require.Equal(t, "https://boomlive.in/a", a.URL)
	require.Equal(t, "2024-05-01", a.PublishDate)
	require.Equal(t, []string{"Scam", "Lottery"}, []string(a.Tags))
	require.Equal(t, "BoomLive", a.Author)
	require.Equal(t, "Email Scanner", a.Category)
}

func TestExtractorUnsuccessfulEnvelope(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"success":false,"results":[]}`, nil)

	results, err := upstream.NewExtractorClient(srv.URL).Extract(context.Background(), []string{"https://x.com"})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestExtractorSkipsEmptyBatch(t *testing.T) {
	results, err := upstream.NewExtractorClient("http://127.0.0.1:1").Extract(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestStoryClient(t *testing.T) {
	reply := `{"success":true,"articles":[
		{"url":"https://boomlive.in/s1","data":{"heading":"Job scam on Telegram","description":"task based fraud","tags":["Job Scam"],"authorName":"Desk","publishDate":"2024-06-01 10:00:00"}},
		{"url":"","data":{"heading":"no url"}}
	],"pagination":{"hasMore":true}}`
	var body map[string]any
	srv := jsonServer(t, http.StatusOK, reply, &body)

	page, err := upstream.NewStoryClient(srv.URL).SearchStories(context.Background(), upstream.StoryQuery{SearchText: "job scam", Count: 6})
	require.NoError(t, err)
	require.Equal(t, "job scam", body["searchText"])
	require.EqualValues(t, 6, body["count"])
	require.NotContains(t, body, "tags")
	require.True(t, page.HasMore)
	require.Len(t, page.Articles, 1)
	require.Equal(t, "Desk", page.Articles[0].Author)
}

func TestStoryClientUnsuccessful(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"success":false}`, nil)

	_, err := upstream.NewStoryClient(srv.URL).SearchStories(context.Background(), upstream.StoryQuery{Count: 6})
	require.Equal(t, apperr.KindRemote, apperr.KindOf(err))
}

func TestRiskClient(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		reply    string
		wantKind apperr.Kind
	}{
		{name: "prediction", status: http.StatusOK, reply: `{"prediction":{"SCORE":12,"RISK_LEVEL":"CRITICAL","isDirectIP":true}}`},
		{name: "timeout code", status: http.StatusOK, reply: `{"code":"TIMEOUT"}`, wantKind: apperr.KindTimeout},
		{name: "remote error", status: http.StatusOK, reply: `{"error":true,"message":"invalid url"}`, wantKind: apperr.KindRemote},
		{name: "missing prediction", status: http.StatusOK, reply: `{}`, wantKind: apperr.KindDecode},
		{name: "server error", status: http.StatusInternalServerError, reply: `boom`, wantKind: apperr.KindStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			srv := jsonServer(t, tt.status, tt.reply, &body)

			report, err := upstream.NewRiskClient(srv.URL).CheckURL(context.Background(), "gifttowallet.com")
			require.Equal(t, "https://gifttowallet.com", body["url"])
			if tt.wantKind != "" {
				require.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, "CRITICAL", report.RiskLevel())
			require.Equal(t, true, report["isDirectIP"])
		})
	}
}

func TestPageFetcher(t *testing.T) {
	page := `<html><head>
		<title>Ignored</title>
		<meta property="og:title" content="Viral Bank SMS Is Fake | BOOM">
		<meta name="description" content="<b>Do not</b>   click the link">
		<meta property="og:image" content="https://img/x.jpg">
		<meta property="article:published_time" content="2024-03-04T10:00:00Z">
	</head><body></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	a, err := upstream.NewPageFetcher().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Viral Bank SMS Is Fake", a.Heading)
	require.Equal(t, "Do not click the link", a.Description)
	require.Equal(t, "https://img/x.jpg", a.ThumbURL)
	require.Equal(t, "2024-03-04T10:00:00Z", a.PublishDate)
	require.Equal(t, "Bank Verification", a.Category)
	require.True(t, strings.HasPrefix(a.URL, "http://"))
}

func TestPageFetcherNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := upstream.NewPageFetcher().Fetch(context.Background(), srv.URL)
	require.Equal(t, apperr.KindStatus, apperr.KindOf(err))
}
