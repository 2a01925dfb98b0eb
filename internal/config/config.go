package config

import (
	"fmt"
	"net/url"
	"time"
)

// Default endpoints of the production deployment.
const (
	DefaultSearchURL    = "https://a8c4cosco0wc0gg8s40w8kco.vps.boomlive.in/scam-check"
	DefaultExtractorURL = "https://microservices.coolify.vps.boomlive.in/api/extract-scamcheck-articles"
	DefaultStoriesURL   = "https://microservices.coolify.vps.boomlive.in/api/scamcheck/articles"
	DefaultPredictURL   = "https://qs0ks48sscgg0gs4wk4k08g0.vps.boomlive.in/predict"
)

// Common contains Elasticsearch parameters shared by the background services.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Upstream lists the remote services the API depends on.
type Upstream struct {
	SearchURL    string
	ExtractorURL string
	StoriesURL   string
	PredictURL   string
	Timeout      time.Duration
}

// Resolver holds the query resolution tunables.
type Resolver struct {
	MinArticles     int
	PaddingKeywords int
	RetryKeywords   int
	RecentBatch     int
	FollowUp        bool
	PageFallback    bool
	TuningFile      string
}

// Recorder configures where unanswered questions go.
type Recorder struct {
	WebhookURL string
	Source     string
	Timeout    time.Duration
}

// API describes HTTP-layer configuration.
type API struct {
	BindAddr       string
	AllowedOrigins []string
	Upstream       Upstream
	Resolver       Resolver
	Recorder       Recorder
	KafkaBrokers   []string
	KafkaTopic     string
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	KeywordLimit   int
	DedupeCapacity int
	DedupeTTL      time.Duration
	RedisURL       string
	BatchSize      int
	CommitInterval time.Duration
	MetricsAddr    string
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "unanswered_questions"),
	}
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		AllowedOrigins: splitAndTrim(getEnv("API_ALLOWED_ORIGINS", "*")),
		Upstream: Upstream{
			SearchURL:    getEnv("SEARCH_API_URL", DefaultSearchURL),
			ExtractorURL: getEnv("EXTRACTOR_API_URL", DefaultExtractorURL),
			StoriesURL:   getEnv("STORIES_API_URL", DefaultStoriesURL),
			PredictURL:   getEnv("PREDICT_API_URL", DefaultPredictURL),
			Timeout:      getDuration("UPSTREAM_TIMEOUT", "20s"),
		},
		Resolver: Resolver{
			MinArticles:     getInt("RESOLVER_MIN_ARTICLES", 4),
			PaddingKeywords: getInt("RESOLVER_PADDING_KEYWORDS", 5),
			RetryKeywords:   getInt("RESOLVER_RETRY_KEYWORDS", 6),
			RecentBatch:     getInt("RESOLVER_RECENT_BATCH", 50),
			FollowUp:        getBool("RESOLVER_FOLLOW_UP", true),
			PageFallback:    getBool("RESOLVER_PAGE_FALLBACK", false),
			TuningFile:      getEnv("RESOLVER_TUNING_FILE", ""),
		},
		Recorder: Recorder{
			WebhookURL: getEnv("RECORDER_WEBHOOK_URL", ""),
			Source:     getEnv("RECORDER_SOURCE", "ScamCheck Go API"),
			Timeout:    getDuration("RECORDER_TIMEOUT", "10s"),
		},
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_UNANSWERED_TOPIC", "unanswered_questions"),
	}

	for key, raw := range map[string]string{
		"SEARCH_API_URL":    c.Upstream.SearchURL,
		"EXTRACTOR_API_URL": c.Upstream.ExtractorURL,
		"STORIES_API_URL":   c.Upstream.StoriesURL,
		"PREDICT_API_URL":   c.Upstream.PredictURL,
	} {
		if err := validateURL(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.Recorder.WebhookURL != "" {
		if err := validateURL(c.Recorder.WebhookURL); err != nil {
			return nil, fmt.Errorf("RECORDER_WEBHOOK_URL: %w", err)
		}
	}

	if c.Upstream.Timeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Recorder.Timeout <= 0 {
		return nil, fmt.Errorf("RECORDER_TIMEOUT must be positive")
	}
	if c.Resolver.MinArticles <= 0 {
		return nil, fmt.Errorf("RESOLVER_MIN_ARTICLES must be positive")
	}
	if c.Resolver.PaddingKeywords <= 0 {
		return nil, fmt.Errorf("RESOLVER_PADDING_KEYWORDS must be positive")
	}
	if c.Resolver.RetryKeywords <= 0 {
		return nil, fmt.Errorf("RESOLVER_RETRY_KEYWORDS must be positive")
	}
	if c.Resolver.RecentBatch <= 0 {
		return nil, fmt.Errorf("RESOLVER_RECENT_BATCH must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_UNANSWERED_TOPIC is required when KAFKA_BROKERS is set")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_UNANSWERED_TOPIC", "unanswered_questions"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "unanswered-worker"),
		KeywordLimit:   getInt("WORKER_KEYWORD_LIMIT", 8),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		RedisURL:       getEnv("WORKER_REDIS_URL", ""),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		CommitInterval: getDuration("WORKER_COMMIT_INTERVAL", "0s"),
		MetricsAddr:    getEnv("WORKER_METRICS_ADDR", ""),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_LIMIT must be positive")
	}
	if c.CommitInterval < 0 {
		return nil, fmt.Errorf("WORKER_COMMIT_INTERVAL must not be negative")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
