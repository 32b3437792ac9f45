package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vlyx/internal/config"
	"github.com/noah-isme/backend-vlyx/internal/obs"
)

// StartTracing installs the tracer provider when tracing is enabled and returns a stop function
// that flushes pending spans. A failed exporter disables tracing instead of aborting start-up.
func StartTracing(cfg *config.Config, logger zerolog.Logger, service, component string) func() {
	if !cfg.Obs.TracingEnabled {
		return func() {}
	}
	shutdown, err := obs.Tracing{
		Service:     service,
		Component:   component,
		Environment: cfg.AppEnv,
		Exporter:    cfg.Obs.TracingExporter,
		Endpoint:    cfg.Obs.OTLPEndpoint,
		Ratio:       cfg.Obs.SamplingRatio,
	}.Start(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
		cfg.Obs.TracingEnabled = false
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}
}
