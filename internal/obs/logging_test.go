package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")

	var scoped *zerolog.Logger
	handler := middleware.RequestID(RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = zerolog.Ctx(r.Context())
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant", nil)
	req = req.WithContext(WithRoutePattern(req.Context(), "/api/v1/assistant"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, scoped)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["message"])
	require.Equal(t, "error", line["level"])
	require.Equal(t, "/api/v1/assistant", line["route"])
	require.EqualValues(t, http.StatusBadGateway, line["status"])
	require.EqualValues(t, len("upstream"), line["bytes"])
	require.NotEmpty(t, line["request_id"])
}

func TestRequestLoggerQuietPaths(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")
	rl := RequestLogger{Logger: logger, Quiet: []string{"/health/live"}}

	ok := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Zero(t, buf.Len(), "healthy probes are debug level")

	failing := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Contains(t, buf.String(), `"status":503`)
}

func TestRequestLoggerClientErrorsWarn(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger{Logger: newLogger(&buf, "json", "info")}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
}
