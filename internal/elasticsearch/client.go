package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

// Client stores unanswered questions in the research index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *slog.Logger
}

// New instantiates the Elasticsearch client.
func New(addr, index string, log *slog.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{es: es, index: index, log: log}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "keyword"},
			"query":       map[string]any{"type": "text"},
			"category":    map[string]any{"type": "keyword"},
			"reason":      map[string]any{"type": "text"},
			"source":      map[string]any{"type": "keyword"},
			"timestamp":   map[string]any{"type": "date"},
			"last_seen":   map[string]any{"type": "date"},
			"occurrences": map[string]any{"type": "integer"},
			"keywords":    map[string]any{"type": "keyword"},
			"urls":        map[string]any{"type": "keyword"},
		},
	},
}

// EnsureIndex creates the research index with its mapping when missing.
func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{c.index}}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	payload, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	res, err := esapi.IndicesCreateRequest{Index: c.index, Body: bytes.NewReader(payload)}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// Another worker may have created it in between.
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index failed: %s", strings.TrimSpace(string(body)))
	}
	c.log.Info("created research index", slog.String("index", c.index))
	return nil
}

const bumpScript = "ctx._source.occurrences = (ctx._source.occurrences == null ? 1 : ctx._source.occurrences) + 1; " +
	"ctx._source.last_seen = params.last_seen; ctx._source.reason = params.reason"

// IndexUnanswered inserts doc, or bumps the occurrence count and last_seen of
// the document already stored under doc.ID.
func (c *Client) IndexUnanswered(ctx context.Context, doc models.UnansweredDocument) error {
	if doc.Occurrences <= 0 {
		doc.Occurrences = 1
	}
	if doc.LastSeen.IsZero() {
		doc.LastSeen = doc.Timestamp
	}

	body := map[string]any{
		"script": map[string]any{
			"source": bumpScript,
			"lang":   "painless",
			"params": map[string]any{
				"last_seen": doc.LastSeen.UTC().Format(time.RFC3339),
				"reason":    doc.Reason,
			},
		},
		"upsert": doc,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}

	retries := 3
	req := esapi.UpdateRequest{
		Index:           c.index,
		DocumentID:      doc.ID,
		Body:            bytes.NewReader(payload),
		RetryOnConflict: &retries,
		Refresh:         "false",
	}

	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("index doc: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index doc failed: %s", strings.TrimSpace(string(data)))
	}
	return nil
}

// DeleteOlderThan removes documents not seen for maxAge using batched
// delete-by-query. It loops until a batch deletes fewer than batchSize.
func (c *Client) DeleteOlderThan(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	cutoff := time.Now().Add(-maxAge).UTC().Format(time.RFC3339)
	payload, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"range": map[string]any{
				"last_seen": map[string]any{"lte": cutoff},
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal delete body: %w", err)
	}

	var total int64
	for {
		deleted, err := c.deleteBatch(ctx, payload, batchSize)
		total += deleted
		if err != nil {
			return total, err
		}
		c.log.Debug("retention batch", slog.Int64("deleted", deleted))
		if deleted < int64(batchSize) {
			return total, nil
		}
	}
}

func (c *Client) deleteBatch(ctx context.Context, payload []byte, batchSize int) (int64, error) {
	res, err := c.es.DeleteByQuery(
		[]string{c.index},
		bytes.NewReader(payload),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithWaitForCompletion(true),
		c.es.DeleteByQuery.WithConflicts("proceed"),
		c.es.DeleteByQuery.WithMaxDocs(batchSize),
		c.es.DeleteByQuery.WithScrollSize(batchSize),
	)
	if err != nil {
		return 0, fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		data, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("delete by query failed: %s", strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode delete response: %w", err)
	}
	return parsed.Deleted, nil
}

// Health checks the cluster health endpoint.
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Cluster.Health(c.es.Cluster.Health.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("cluster health bad: %s", strings.TrimSpace(string(data)))
	}
	return nil
}
