package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/segmentio/kafka-go"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

// Webhook posts records as JSON to a URL such as a spreadsheet script.
type Webhook struct {
	url  string
	http *http.Client
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{}
	}
	return &Webhook{url: url, http: client}
}

func (w *Webhook) Send(ctx context.Context, rec models.UnansweredRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// Apps Script answers with a redirect to the script output; anything below 400 is delivery.
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes records to the unanswered-questions topic.
type KafkaSink struct {
	w messageWriter
}

// NewKafkaWriter builds the producer used by KafkaSink.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{w: w}
}

func (k *KafkaSink) Send(ctx context.Context, rec models.UnansweredRecord) error {
	msg, err := EncodeMessage(rec)
	if err != nil {
		return err
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}
	return nil
}

// EncodeMessage keys the message by record ID.
func EncodeMessage(rec models.UnansweredRecord) (kafka.Message, error) {
	value, err := json.Marshal(rec)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal record: %w", err)
	}
	return kafka.Message{
		Key:   []byte(rec.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(rec.Source)},
		},
	}, nil
}

// LogSink only logs; used when no delivery target is configured.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (l *LogSink) Send(_ context.Context, rec models.UnansweredRecord) error {
	l.log.Info("unanswered question",
		slog.String("query", rec.Query),
		slog.String("category", rec.Category),
		slog.String("reason", rec.Reason),
	)
	return nil
}

// Multi sends to every sink and joins their errors.
type Multi []Sink

func (m Multi) Send(ctx context.Context, rec models.UnansweredRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
