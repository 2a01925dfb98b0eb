package recorder

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
)

const (
	DefaultSource   = "ScamCheck Go API"
	DefaultCategory = "unanswered"
	defaultTimeout  = 10 * time.Second
)

// Sink delivers an enriched record somewhere a researcher will see it.
type Sink interface {
	Send(ctx context.Context, rec models.UnansweredRecord) error
}

// Recorder dispatches unanswered questions without blocking the caller.
type Recorder struct {
	sink    Sink
	log     *slog.Logger
	source  string
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

type Option func(*Recorder)

func WithSource(source string) Option {
	return func(r *Recorder) {
		if s := strings.TrimSpace(source); s != "" {
			r.source = s
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

func New(sink Sink, log *slog.Logger, opts ...Option) *Recorder {
	if log == nil {
		log = logger.Discard()
	}
	r := &Recorder{
		sink:    sink,
		log:     log,
		source:  DefaultSource,
		timeout: defaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enriches rec and sends it on a detached goroutine. Failures are
// logged and counted; they never reach the caller.
func (r *Recorder) Record(ctx context.Context, rec models.UnansweredRecord) {
	rec = r.enrich(rec)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.sink.Send(sendCtx, rec); err != nil {
			metrics.UnansweredRecordsTotal.WithLabelValues("failed").Inc()
			r.log.Warn("save unanswered question",
				slog.String("id", rec.ID),
				slog.String("reason", rec.Reason),
				slog.Any("err", err),
			)
			return
		}
		metrics.UnansweredRecordsTotal.WithLabelValues("sent").Inc()
		r.log.Info("unanswered question saved", slog.String("id", rec.ID), slog.String("reason", rec.Reason))
	}()
}

// Wait blocks until every in-flight dispatch has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) enrich(rec models.UnansweredRecord) models.UnansweredRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Category == "" {
		rec.Category = DefaultCategory
	}
	rec.Source = r.source
	rec.Timestamp = r.now().UTC().Format(time.RFC3339)
	return rec
}
