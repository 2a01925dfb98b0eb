package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/catalog"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

const (
	maxTitleLen       = 150
	maxDescriptionLen = 200
	maxPageBytes      = 2 << 20
)

var (
	titleSuffix = regexp.MustCompile(`\s*[|–].*$`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
	spaces      = regexp.MustCompile(`\s+`)
)

// PageFetcher reads Open Graph metadata straight from an article page.
type PageFetcher struct {
	base
}

// NewPageFetcher returns a fetcher that issues plain GETs.
func NewPageFetcher(opts ...Option) *PageFetcher {
	return &PageFetcher{base: newBase("page", "", opts)}
}

// Fetch downloads url and builds an article from its meta tags.
func (p *PageFetcher) Fetch(ctx context.Context, url string) (models.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Article{}, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; scamcheck/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.http.Do(req)
	if err != nil {
		return models.Article{}, apperr.Transport(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Article{}, apperr.Status(p.name, resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return models.Article{}, apperr.Decode(p.name, err)
	}
	return articleFromDocument(url, doc)
}

func articleFromDocument(url string, doc *goquery.Document) (models.Article, error) {
	meta := func(keys ...string) string {
		for _, key := range keys {
			sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
			if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	title := meta("og:title", "twitter:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	title = cleanTitle(title)
	if title == "" {
		return models.Article{}, apperr.Decode("page", fmt.Errorf("no title in %s", url))
	}

	a := models.Article{
		URL:         url,
		Heading:     title,
		Description: cleanDescription(meta("og:description", "description", "twitter:description")),
		ThumbURL:    meta("og:image", "twitter:image"),
		PublishDate: meta("article:published_time", "datePublished"),
		Author:      firstNonEmpty(meta("author", "article:author"), defaultAuthor),
	}
	a.Category = catalog.DetectCategory(a.Heading, a.Description).Label
	return a, nil
}

func cleanTitle(s string) string {
	s = titleSuffix.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	return clip(s, maxTitleLen)
}

func cleanDescription(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	return clip(s, maxDescriptionLen)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
