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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/config"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/logger"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/metrics"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/recorder"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/resolver"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/upstream"
)

func main() {
	log := logger.New("api")
	if err := config.LoadDotEnv(); err != nil {
		log.Warn("load .env", slog.Any("err", err))
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	tuning, err := config.LoadTuning(cfg.Resolver.TuningFile)
	if err != nil {
		log.Error("load tuning", slog.Any("err", err))
		os.Exit(1)
	}

	opts := []upstream.Option{
		upstream.WithTimeout(cfg.Upstream.Timeout),
		upstream.WithLogger(log),
	}
	stories := upstream.NewStoryClient(cfg.Upstream.StoriesURL, opts...)
	risk := upstream.NewRiskClient(cfg.Upstream.PredictURL, opts...)

	sink, closeSink := buildSink(cfg, log)
	defer closeSink()
	rec := recorder.New(sink, log,
		recorder.WithSource(cfg.Recorder.Source),
		recorder.WithTimeout(cfg.Recorder.Timeout),
	)

	deps := resolver.Deps{
		Search:   upstream.NewSearchClient(cfg.Upstream.SearchURL, opts...),
		Extract:  upstream.NewExtractorClient(cfg.Upstream.ExtractorURL, opts...),
		Stories:  stories,
		Risk:     risk,
		Recorder: rec,
	}
	if cfg.Resolver.PageFallback {
		deps.Pages = upstream.NewPageFetcher(opts...)
	}
	res := resolver.New(deps, resolver.Config{
		MinArticles:     cfg.Resolver.MinArticles,
		PaddingKeywords: cfg.Resolver.PaddingKeywords,
		RetryKeywords:   cfg.Resolver.RetryKeywords,
		RecentBatch:     cfg.Resolver.RecentBatch,
		FollowUp:        cfg.Resolver.FollowUp,
		GenericPhrases:  tuning.GenericPhrases,
	}, log)

	// A resolution chains several upstream calls.
	resolveTimeout := 8 * cfg.Upstream.Timeout
	srv := &server{log: log, resolver: res, risk: risk, stories: stories, resolveTimeout: resolveTimeout}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           newRouter(srv, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      resolveTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
	rec.Wait()
}

func newRouter(srv *server, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware("api"))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	}).Handler)

	r.Get("/health", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", srv.handleAnalyze)
		r.Post("/search", srv.handleSearch)
		r.Post("/check-url", srv.handleCheckURL)
		r.Post("/stories", srv.handleStories)
		r.Get("/categories", srv.handleCategories)
	})
	return r
}

// buildSink picks every configured destination for unanswered questions,
// falling back to the log.
func buildSink(cfg *config.API, log *slog.Logger) (recorder.Sink, func()) {
	var sinks recorder.Multi
	closeFn := func() {}

	if cfg.Recorder.WebhookURL != "" {
		sinks = append(sinks, recorder.NewWebhook(cfg.Recorder.WebhookURL, &http.Client{}))
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := recorder.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, recorder.NewKafkaSink(w))
		closeFn = func() {
			if err := w.Close(); err != nil {
				log.Warn("close kafka writer", slog.Any("err", err))
			}
		}
	}

	switch len(sinks) {
	case 0:
		log.Warn("no unanswered-question destination configured, logging only")
		return recorder.NewLogSink(log), closeFn
	case 1:
		return sinks[0], closeFn
	}
	return sinks, closeFn
}
