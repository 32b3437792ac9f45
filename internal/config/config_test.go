package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-vlyx/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PORT":         "",
		"QUOTE_SINK":   "",
		"REDIS_URL":    "",
		"GEMINI_MODEL": "",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, config.SinkLog, cfg.QuoteSink)
	require.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.False(t, cfg.AssistantEnabled())
	require.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PORT":                  ":9090",
		"QUOTE_SINK":            "FORM",
		"QUOTE_FORM_URL":        "https://forms.example/submit",
		"CORS_ALLOWED_ORIGINS":  "https://vlyx.example, https://www.vlyx.example",
		"ASSISTANT_RATE_WINDOW": "30s",
		"GEMINI_API_KEY":        "key",
		"OBS_ENABLE_TRACING":    "yes",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, config.SinkForm, cfg.QuoteSink)
	require.Equal(t, []string{"https://vlyx.example", "https://www.vlyx.example"}, cfg.CORSAllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.AssistantRateWindow)
	require.True(t, cfg.AssistantEnabled())
	require.True(t, cfg.Obs.TracingEnabled)
}

func TestLoadRejectsIncompleteSink(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"QUOTE_SINK": "form", "QUOTE_FORM_URL": ""})
	require.ErrorContains(t, err, "QUOTE_FORM_URL")

	_, err = config.LoadForTests(map[string]string{"QUOTE_SINK": "postgres", "DATABASE_URL": ""})
	require.ErrorContains(t, err, "DATABASE_URL")

	_, err = config.LoadForTests(map[string]string{"QUOTE_SINK": "smtp"})
	require.ErrorContains(t, err, "QUOTE_SINK")
}

func TestLoadAsyncNeedsRedis(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{"QUOTE_ASYNC": "true", "REDIS_URL": "", "QUOTE_SINK": "log"})
	require.ErrorContains(t, err, "REDIS_URL")

	cfg, err := config.LoadForTests(map[string]string{"QUOTE_ASYNC": "true", "REDIS_URL": "redis://localhost:6379/0", "QUOTE_SINK": "log"})
	require.NoError(t, err)
	require.True(t, cfg.QuoteAsync)
}
