package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-vlyx/internal/assistant"
	"github.com/noah-isme/backend-vlyx/internal/common"
	"github.com/noah-isme/backend-vlyx/internal/coupon"
	"github.com/noah-isme/backend-vlyx/internal/health"
	"github.com/noah-isme/backend-vlyx/internal/obs"
	"github.com/noah-isme/backend-vlyx/internal/pricing"
	"github.com/noah-isme/backend-vlyx/internal/quote"
	"github.com/noah-isme/backend-vlyx/internal/ratelimit"
	"github.com/noah-isme/backend-vlyx/internal/security"
)

// NewRouter wires every HTTP route of the API.
func NewRouter(d *Dependencies) (http.Handler, error) {
	cfg := d.Config
	logger := d.Logger

	sink, err := d.Sink()
	if err != nil {
		return nil, err
	}
	quoteSvc, err := quote.NewService(quote.ServiceConfig{Dispatcher: d.Dispatcher(sink), Logger: logger})
	if err != nil {
		return nil, err
	}
	var leads *quote.LeadStore
	if d.DB != nil {
		leads = &quote.LeadStore{DB: d.DB}
	}
	quoteHandler := quote.NewHandler(quoteSvc, leads)
	pricingHandler := pricing.NewHandler()
	couponHandler := coupon.NewHandler()
	assistantHandler := assistant.NewHandler(d.Assistant())
	healthHandler := health.Handler{Probes: d.Probes()}

	limiter := d.Limiter()
	onLimitErr := func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") }
	quoteLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("quote"), Window: cfg.QuoteRateWindow, Max: cfg.QuoteRateLimit},
		OnError: onLimitErr,
	}
	assistantLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("assistant"), Window: cfg.AssistantRateWindow, Max: cfg.AssistantRateLimit},
		OnError: onLimitErr,
	}
	idem := common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL}
	admin := security.AdminToken{Hash: cfg.AdminTokenHash, Logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Obs.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.Obs.MetricsEnabled {
		buckets := obs.ParseLatencyBuckets(cfg.Obs.MetricsBuckets)
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, buckets, nil)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger, Quiet: []string{"/health/live", "/health/ready", "/metrics"}}.Middleware)
	r.Use(security.CORS(cfg.CORSAllowedOrigins))
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

	if cfg.Obs.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Obs.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux("/debug/pprof"), cfg.Obs.PprofUser, cfg.Obs.PprofPass))
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/pricing/rates", pricingHandler.Rates)
		v.Post("/coupons/resolve", couponHandler.Resolve)
		v.Post("/quotes/preview", quoteHandler.Preview)
		v.With(quoteLimit.Middleware, idem.Middleware).Post("/quotes", quoteHandler.Submit)
		v.With(assistantLimit.Middleware).Post("/assistant", assistantHandler.Chat)

		v.Route("/admin", func(a chi.Router) {
			a.Use(admin.Middleware)
			a.Get("/quotes", quoteHandler.ListLeads)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "route not found", nil)
	})
	return r, nil
}
