package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestHeadersHSTSOnlyOverTLS(t *testing.T) {
	h := Headers{Enable: true, EnableHSTS: true, HSTSMaxAge: 600, HSTSIncludeSubdomains: true}.Middleware(okHandler)

	direct := httptest.NewRequest(http.MethodGet, "https://api.vlyx.example/health/live", nil)
	direct.TLS = &tls.ConnectionState{}
	proxied := httptest.NewRequest(http.MethodGet, "http://api.vlyx.example/health/live", nil)
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")
	plain := httptest.NewRequest(http.MethodGet, "http://api.vlyx.example/health/live", nil)

	for name, tc := range map[string]struct {
		req  *http.Request
		hsts string
	}{
		"direct tls":  {direct, "max-age=600; includeSubDomains"},
		"proxied tls": {proxied, "max-age=600; includeSubDomains"},
		"plain http":  {plain, ""},
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, tc.req)
			require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
			require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
			require.Equal(t, tc.hsts, rr.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestHeadersDefaultMaxAge(t *testing.T) {
	require.Equal(t, "max-age=31536000", Headers{}.hstsValue())
}

func TestHeadersDisabled(t *testing.T) {
	rr := httptest.NewRecorder()
	Headers{EnableHSTS: true}.Middleware(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Empty(t, rr.Header().Get("X-Content-Type-Options"))
}

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "http://localhost/api/v1/quotes", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return req
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	handler := CORS([]string{"https://vlyx.example", " https://www.vlyx.example", ""})(okHandler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, preflight("https://www.vlyx.example"))
	require.Equal(t, "https://www.vlyx.example", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, preflight("https://malicious.example"))
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost/api/v1/pricing/rates", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rr := httptest.NewRecorder()
	CORS(nil)(okHandler).ServeHTTP(rr, req)

	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}
