package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const dlqAttempts = 5

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// deadLetters forwards messages the worker could not process.
type deadLetters struct {
	w       messageWriter
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func newDeadLetters(w messageWriter, log *slog.Logger) *deadLetters {
	return &deadLetters{
		w:   w,
		log: log,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

// Send writes msg with failure headers, retrying with exponential backoff.
// It reports whether the message reached the DLQ.
func (d *deadLetters) Send(ctx context.Context, msg kafka.Message, cause error) bool {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	out := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}

	for attempt := 0; attempt < dlqAttempts; attempt++ {
		err := d.w.WriteMessages(ctx, out)
		if err == nil {
			d.log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		wait := d.backoff(attempt)
		d.log.Warn("DLQ write failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", wait),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			d.log.Info("context canceled during DLQ retry")
			return false
		}
	}

	d.log.Error("DLQ write exhausted retries",
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)
	return false
}

func (d *deadLetters) Close() error {
	return d.w.Close()
}
