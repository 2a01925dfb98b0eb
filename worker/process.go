package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/dedupe"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
)

type unansweredIndexer interface {
	IndexUnanswered(ctx context.Context, doc models.UnansweredDocument) error
}

type processor struct {
	log          *slog.Logger
	index        unansweredIndexer
	seen         dedupe.Store
	keywordLimit int
	now          func() time.Time
}

var errEmptyQuery = errors.New("empty query")

func (p *processor) process(ctx context.Context, msg kafka.Message) error {
	var rec models.UnansweredRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	doc, err := p.document(rec)
	if err != nil {
		return err
	}

	// Only redeliveries of one submission are dropped. Separate submissions of
	// the same question reach the upsert so occurrences counts them.
	key := deliveryKey(msg, rec)
	if key != "" {
		dup, err := p.seen.SeenOrMark(ctx, key)
		if err != nil {
			p.log.Warn("dedupe lookup failed", slog.String("key", key), slog.Any("err", err))
		}
		if dup {
			metrics.WorkerMessagesTotal.WithLabelValues("duplicate").Inc()
			p.log.Debug("redelivered record", slog.String("key", key), slog.String("id", doc.ID))
			return nil
		}
	}

	if err := p.index.IndexUnanswered(ctx, doc); err != nil {
		if key != "" {
			if ferr := p.seen.Forget(ctx, key); ferr != nil {
				p.log.Warn("dedupe forget failed", slog.String("key", key), slog.Any("err", ferr))
			}
		}
		return err
	}

	metrics.WorkerMessagesTotal.WithLabelValues("indexed").Inc()
	p.log.Info("indexed unanswered question",
		slog.String("id", doc.ID),
		slog.String("reason", doc.Reason),
		slog.Any("keywords", doc.Keywords),
	)
	return nil
}

// deliveryKey identifies one submission: the record ID, else the Kafka key.
func deliveryKey(msg kafka.Message, rec models.UnansweredRecord) string {
	if id := strings.TrimSpace(rec.ID); id != "" {
		return id
	}
	return strings.TrimSpace(string(msg.Key))
}

func (p *processor) document(rec models.UnansweredRecord) (models.UnansweredDocument, error) {
	query := strings.TrimSpace(rec.Query)
	if query == "" {
		return models.UnansweredDocument{}, errEmptyQuery
	}

	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = "unanswered"
	}
	source := strings.TrimSpace(rec.Source)
	if source == "" {
		source = "unknown"
	}

	ts := parseTimestamp(rec.Timestamp)
	if ts.IsZero() {
		ts = p.clock().UTC()
	}

	doc := models.UnansweredDocument{
		ID:          processing.BuildRecordID(query, category),
		Query:       query,
		Category:    category,
		Reason:      strings.TrimSpace(rec.Reason),
		Source:      source,
		Timestamp:   ts,
		LastSeen:    ts,
		Occurrences: 1,
		Keywords:    processing.ExtractKeywords(query, p.keywordLimit),
		URLs:        processing.ExtractURLs(query),
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return doc, nil
}

func (p *processor) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
