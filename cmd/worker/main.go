package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-vlyx/internal/app"
	"github.com/noah-isme/backend-vlyx/internal/config"
	"github.com/noah-isme/backend-vlyx/internal/obs"
	"github.com/noah-isme/backend-vlyx/internal/quote"
	"github.com/noah-isme/backend-vlyx/internal/resilience"
)

const serviceName = "vlyx-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)
	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the worker")
	}
	stopTracing := app.StartTracing(cfg, logger, serviceName, "worker")
	defer stopTracing()

	// The worker only consumes; it never enqueues.
	cfg.QuoteAsync = false
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := app.New(initCtx, cfg, logger, serviceName)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	sink, err := deps.Sink()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise quote sink")
	}

	opt, err := app.RedisClientOpt(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{cfg.QueueName: 1},
		RetryDelayFunc: func(n int, _ error, _ *asynq.Task) time.Duration {
			return resilience.Backoff(10*cfg.RetryBase, n+1, cfg.RetryJitterPercent)
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			logger.Warn().Err(err).Str("task", task.Type()).Int("retried", retried).Msg("task failed")
		}),
		ShutdownTimeout: 20 * time.Second,
	})

	mux := asynq.NewServeMux()
	mux.Handle(quote.TaskSubmit, quote.NewSubmitHandler(sink, deps.Locker(), 2*cfg.OutboundTimeout, logger))

	logger.Info().Str("queue", cfg.QueueName).Str("sink", sink.Name()).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Error().Err(err).Msg("worker stopped with error")
		return
	}
	logger.Info().Msg("worker shutdown complete")
}
