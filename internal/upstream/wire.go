package upstream

import (
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/catalog"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

const defaultAuthor = "BoomLive"

// articleData is the metadata object shared by the extractor and story search replies.
type articleData struct {
	URL         string      `json:"url"`
	Heading     string      `json:"heading"`
	Description string      `json:"description"`
	ThumbURL    string      `json:"thumbUrl"`
	DateNews    string      `json:"date_news"`
	DateCreated string      `json:"date_created"`
	PublishDate string      `json:"publishDate"`
	CreatedDate string      `json:"createdDate"`
	Tags        models.Tags `json:"tags"`
	NewsTags    models.Tags `json:"news_tags"`
	Source      string      `json:"source"`
	Author      string      `json:"author"`
	AuthorName  string      `json:"authorName"`
}

func (d articleData) toArticle(url string) models.Article {
	if url == "" {
		url = d.URL
	}
	a := models.Article{
		URL:         strings.TrimSpace(url),
		Heading:     strings.TrimSpace(d.Heading),
		Description: strings.TrimSpace(d.Description),
		ThumbURL:    d.ThumbURL,
		PublishDate: firstNonEmpty(d.PublishDate, d.DateNews),
		CreatedDate: firstNonEmpty(d.CreatedDate, d.DateCreated),
		Tags:        d.Tags,
		Author:      firstNonEmpty(d.Source, d.Author, d.AuthorName, defaultAuthor),
	}
	if len(a.Tags) == 0 {
		a.Tags = d.NewsTags
	}
	a.Category = catalog.DetectCategory(a.Heading, a.Description).Label
	return a
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
