package upstream

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

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
)

const (
	defaultTimeout = 20 * time.Second
	maxErrorBody   = 512
)

// Option configures a client.
type Option func(*base)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		b.http = c
	}
}

// WithTimeout bounds every call made by the client.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *base) {
		if log != nil {
			b.log = log
		}
	}
}

type base struct {
	name    string
	url     string
	http    *http.Client
	timeout time.Duration
	log     *slog.Logger
}

func newBase(name, endpoint string, opts []Option) base {
	b := base{
		name:    name,
		url:     strings.TrimSpace(endpoint),
		http:    &http.Client{},
		timeout: defaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// postJSON sends reqData and decodes a 2xx reply into respData.
func (b *base) postJSON(ctx context.Context, reqData, respData any) error {
	start := time.Now()
	err := b.doPost(ctx, reqData, respData)

	outcome := "ok"
	if err != nil {
		outcome = string(apperr.KindOf(err))
	}
	metrics.UpstreamCallsTotal.WithLabelValues(b.name, outcome).Inc()
	metrics.UpstreamCallDuration.WithLabelValues(b.name).Observe(time.Since(start).Seconds())

	if err != nil {
		b.log.Debug("upstream call failed", slog.String("endpoint", b.name), slog.Any("err", err))
	}
	return err
}

func (b *base) doPost(ctx context.Context, reqData, respData any) error {
	payload, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", b.name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", b.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return apperr.Transport(b.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Transport(b.name, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apperr.Status(b.name, resp.StatusCode, truncate(strings.TrimSpace(string(body)), maxErrorBody))
	}

	if respData == nil {
		return nil
	}
	if err := json.Unmarshal(body, respData); err != nil {
		return apperr.Decode(b.name, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
