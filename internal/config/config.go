package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Quote sink kinds.
const (
	SinkLog      = "log"
	SinkForm     = "form"
	SinkPostgres = "postgres"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	SecurityHeaders    bool
	AdminTokenHash     string
	IdempotencyTTL     time.Duration

	GeminiAPIKey        string
	GeminiModel         string
	GeminiBaseURL       string
	AssistantCacheTTL   time.Duration
	AssistantRateLimit  int
	AssistantRateWindow time.Duration

	QuoteSink         string
	QuoteFormURL      string
	QuoteContactField string
	QuoteDetailsField string
	QuoteRateLimit    int
	QuoteRateWindow   time.Duration
	QuoteAsync        bool
	QueueName         string
	QueueMaxRetry     int
	WorkerConcurrency int

	OutboundTimeout     time.Duration
	RetryBase           time.Duration
	RetryMaxAttempts    int
	RetryJitterPercent  float64
	CircuitMinRequests  int
	CircuitFailureRatio float64
	CircuitOpenFor      time.Duration

	Obs Obs
}

// Obs groups logging, metrics, tracing and profiling settings.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	PprofEnabled     bool
	PprofUser        string
	PprofPass        string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 64<<10)),
		SecurityHeaders:    parseBool(k.String("SECURITY_HEADERS"), true),
		AdminTokenHash:     strings.TrimSpace(k.String("ADMIN_TOKEN_HASH")),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		GeminiAPIKey:        strings.TrimSpace(k.String("GEMINI_API_KEY")),
		GeminiModel:         valueOrDefault(k.String("GEMINI_MODEL"), "gemini-1.5-flash"),
		GeminiBaseURL:       valueOrDefault(k.String("GEMINI_BASE_URL"), "https://generativelanguage.googleapis.com/v1beta"),
		AssistantCacheTTL:   parseDuration(k.String("ASSISTANT_CACHE_TTL"), "10m"),
		AssistantRateLimit:  parseInt(k.String("ASSISTANT_RATE_LIMIT"), 20),
		AssistantRateWindow: parseDuration(k.String("ASSISTANT_RATE_WINDOW"), "1m"),

		QuoteSink:         strings.ToLower(valueOrDefault(k.String("QUOTE_SINK"), SinkLog)),
		QuoteFormURL:      strings.TrimSpace(k.String("QUOTE_FORM_URL")),
		QuoteContactField: valueOrDefault(k.String("QUOTE_FORM_CONTACT_FIELD"), "entry.contact"),
		QuoteDetailsField: valueOrDefault(k.String("QUOTE_FORM_DETAILS_FIELD"), "entry.details"),
		QuoteRateLimit:    parseInt(k.String("QUOTE_RATE_LIMIT"), 10),
		QuoteRateWindow:   parseDuration(k.String("QUOTE_RATE_WINDOW"), "10m"),
		QuoteAsync:        parseBool(k.String("QUOTE_ASYNC"), false),
		QueueName:         valueOrDefault(k.String("QUEUE_NAME"), "quotes"),
		QueueMaxRetry:     parseInt(k.String("QUEUE_MAX_RETRY"), 8),
		WorkerConcurrency: parseInt(k.String("WORKER_CONCURRENCY"), 4),

		OutboundTimeout:     parseDuration(k.String("OUTBOUND_TIMEOUT"), "10s"),
		RetryBase:           parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:    parseInt(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent:  parseFloat(k.String("RETRY_JITTER"), 0.2),
		CircuitMinRequests:  parseInt(k.String("CIRCUIT_MIN_REQUESTS"), 5),
		CircuitFailureRatio: parseFloat(k.String("CIRCUIT_FAILURE_RATIO"), 0.5),
		CircuitOpenFor:      parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),

		Obs: Obs{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsEnabled:   parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "vlyx"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			TracingEnabled:   parseBool(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
			PprofEnabled:     parseBool(k.String("OBS_ENABLE_PPROF"), false),
			PprofUser:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
			PprofPass:        strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.QuoteSink {
	case SinkLog:
	case SinkForm:
		if c.QuoteFormURL == "" {
			return errors.New("QUOTE_FORM_URL is required when QUOTE_SINK=form")
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when QUOTE_SINK=postgres")
		}
	default:
		return fmt.Errorf("QUOTE_SINK must be one of log, form, postgres; got %q", c.QuoteSink)
	}
	if c.QuoteAsync && c.RedisURL == "" {
		return errors.New("REDIS_URL is required when QUOTE_ASYNC is enabled")
	}
	if c.CircuitFailureRatio <= 0 || c.CircuitFailureRatio > 1 {
		return errors.New("CIRCUIT_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// AssistantEnabled reports whether a generative backend is configured.
func (c *Config) AssistantEnabled() bool {
	return c.GeminiAPIKey != ""
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
