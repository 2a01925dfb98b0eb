package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/config"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/dedupe"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/elasticsearch"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
)

func main() {
	log := logger.New("worker")
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("load .env", slog.Any("err", err))
	}
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := esClient.EnsureIndex(ctx); err != nil {
		log.Error("ensure research index", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	reader := kafka.NewReader(readerConfig(cfg))
	defer reader.Close()

	dlq := newDeadLetters(&kafka.Writer{
		Addr:        kafka.TCP(cfg.KafkaBrokers...),
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	}, log)
	defer dlq.Close()

	seen, closeSeen, err := buildDedupe(ctx, cfg, log)
	if err != nil {
		log.Error("init dedupe", slog.Any("err", err))
		os.Exit(1)
	}
	defer closeSeen()

	p := &processor{
		log:          log,
		index:        esClient,
		seen:         seen,
		keywordLimit: cfg.KeywordLimit,
	}

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("index", cfg.ElasticsearchIndex),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := p.process(ctx, msg); err != nil {
			metrics.WorkerMessagesTotal.WithLabelValues("failed").Inc()
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
			if !dlq.Send(ctx, msg, err) {
				// Leave the offset uncommitted so the message is redelivered after restart.
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

func serveMetrics(ctx context.Context, log *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", slog.Any("err", err))
	}
}

// buildDedupe shares the duplicate window through Redis when WORKER_REDIS_URL
// is set and keeps it in process otherwise.
func buildDedupe(ctx context.Context, cfg *config.Worker, log *slog.Logger) (dedupe.Store, func(), error) {
	if cfg.RedisURL == "" {
		return dedupe.Local(dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)), func() {}, nil
	}

	r, err := dedupe.NewRedis(cfg.RedisURL, "scamcheck:unanswered:", cfg.DedupeTTL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.Ping(pingCtx); err != nil {
		_ = r.Close()
		return nil, nil, err
	}
	log.Info("dedupe shared through redis")
	return r, func() {
		if err := r.Close(); err != nil {
			log.Warn("close redis", slog.Any("err", err))
		}
	}, nil
}

// readerConfig commits only what CommitMessages is given. A zero
// CommitInterval commits synchronously; a positive one batches commits.
func readerConfig(cfg *config.Worker) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: cfg.CommitInterval,
	}
}
