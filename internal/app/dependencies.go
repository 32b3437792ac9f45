package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vlyx/internal/assistant"
	"github.com/noah-isme/backend-vlyx/internal/cache"
	"github.com/noah-isme/backend-vlyx/internal/config"
	"github.com/noah-isme/backend-vlyx/internal/db"
	"github.com/noah-isme/backend-vlyx/internal/health"
	"github.com/noah-isme/backend-vlyx/internal/lock"
	"github.com/noah-isme/backend-vlyx/internal/quote"
	"github.com/noah-isme/backend-vlyx/internal/ratelimit"
	"github.com/noah-isme/backend-vlyx/internal/resilience"
)

// Dependencies holds the shared clients built from configuration. Redis, DB and TaskClient are
// nil when the corresponding feature is not configured.
type Dependencies struct {
	Config     *config.Config
	Logger     zerolog.Logger
	Redis      *redis.Client
	DB         *pgxpool.Pool
	TaskClient *asynq.Client
}

// New connects every configured backend. On error, anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, appName string) (*Dependencies, error) {
	d := &Dependencies{Config: cfg, Logger: logger}
	if cfg.RedisURL != "" {
		client, err := NewRedis(ctx, cfg.RedisURL, cfg.Obs.MetricsEnabled)
		if err != nil {
			return nil, err
		}
		d.Redis = client
	}
	if cfg.QuoteSink == config.SinkPostgres {
		pool, err := db.Open(ctx, cfg.DatabaseURL, appName)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.DB = pool
	}
	if cfg.QuoteAsync {
		opt, err := RedisClientOpt(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.TaskClient = asynq.NewClient(opt)
	}
	return d, nil
}

// Close releases every open client.
func (d *Dependencies) Close() {
	if d.TaskClient != nil {
		if err := d.TaskClient.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close task client")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close redis")
		}
	}
}

// NewRedis connects a traced Redis client and verifies it responds.
func NewRedis(ctx context.Context, url string, metrics bool) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("instrument redis tracing: %w", err)
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return nil, fmt.Errorf("instrument redis metrics: %w", err)
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisClientOpt converts a redis:// URL into asynq connection options.
func RedisClientOpt(url string) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// HashAdminToken derives the ADMIN_TOKEN_HASH value for token.
func HashAdminToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("admin token must not be empty")
	}
	return argon2id.CreateHash(token, argon2id.DefaultParams)
}

// Outbound builds a resilient HTTP client for target from the retry and breaker settings.
func (d *Dependencies) Outbound(target string) resilience.HTTPClient {
	cfg := d.Config
	client := resilience.NewHTTPClient(target, cfg.OutboundTimeout,
		resilience.RetryPolicy{
			BaseBackoff: cfg.RetryBase,
			MaxAttempts: cfg.RetryMaxAttempts,
			Jitter:      cfg.RetryJitterPercent,
		},
		resilience.BreakerSettings{
			MinRequests:  cfg.CircuitMinRequests,
			FailureRatio: cfg.CircuitFailureRatio,
			OpenFor:      cfg.CircuitOpenFor,
		},
	)
	client.Breaker.WithLogger(d.Logger)
	return client
}

// Sink returns the configured quote sink.
func (d *Dependencies) Sink() (quote.Sink, error) {
	cfg := d.Config
	switch cfg.QuoteSink {
	case config.SinkForm:
		return quote.FormSink{
			Client:       d.Outbound("quote-form"),
			URL:          cfg.QuoteFormURL,
			ContactField: cfg.QuoteContactField,
			DetailsField: cfg.QuoteDetailsField,
		}, nil
	case config.SinkPostgres:
		if d.DB == nil {
			return nil, errors.New("postgres sink selected but database is not connected")
		}
		return quote.PostgresSink{DB: d.DB}, nil
	case config.SinkLog, "":
		return quote.LogSink{Logger: d.Logger.With().Str("component", "quote_sink").Logger()}, nil
	}
	return nil, fmt.Errorf("unknown quote sink %q", cfg.QuoteSink)
}

// Dispatcher queues submissions when a task client is available and delivers inline otherwise.
func (d *Dependencies) Dispatcher(sink quote.Sink) quote.Dispatcher {
	if d.TaskClient != nil {
		return quote.AsyncDispatcher{
			Client:   d.TaskClient,
			Queue:    d.Config.QueueName,
			MaxRetry: d.Config.QueueMaxRetry,
			Timeout:  2 * d.Config.OutboundTimeout,
			Logger:   d.Logger,
		}
	}
	return quote.SyncDispatcher{Sink: sink, Logger: d.Logger}
}

// Locker returns a Redis lock, or nil without Redis.
func (d *Dependencies) Locker() lock.Locker {
	if d.Redis == nil {
		return nil
	}
	return lock.Redis{R: d.Redis}
}

// Limiter returns the Redis sliding window limiter, falling back to an in-process one.
func (d *Dependencies) Limiter() ratelimit.Limiter {
	if d.Redis != nil {
		return ratelimit.SlidingRedis{Client: d.Redis, Prefix: "rl"}
	}
	return ratelimit.NewMemory()
}

// Assistant builds the assistant service. Without an API key it answers from canned replies.
func (d *Dependencies) Assistant() *assistant.Service {
	cfg := d.Config
	var gen assistant.Generator
	if cfg.AssistantEnabled() {
		gen = assistant.NewGeminiClient(d.Outbound("gemini"), cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)
	}
	return assistant.NewService(assistant.Config{
		Generator: gen,
		Cache:     cache.NewJSON(d.Redis, "assistant", cfg.AssistantCacheTTL),
		Timeout:   cfg.OutboundTimeout,
		Logger:    d.Logger.With().Str("component", "assistant").Logger(),
	})
}

// Probes lists readiness checks for the connected backends.
func (d *Dependencies) Probes() []health.Probe {
	var probes []health.Probe
	if d.Redis != nil {
		probes = append(probes, health.RedisProbe(d.Redis, 300*time.Millisecond))
	}
	if d.DB != nil {
		probes = append(probes, health.PostgresProbe(d.DB, 500*time.Millisecond))
	}
	return probes
}
