package security

import (
	"net/http"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// AdminToken guards operator endpoints with a bearer token checked against an argon2id hash.
// With no hash configured every request is refused.
type AdminToken struct {
	Hash   string
	Logger zerolog.Logger
}

// Middleware rejects requests whose bearer token does not match the configured hash.
func (a AdminToken) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if a.Hash == "" || token == "" {
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "admin token required", nil)
			return
		}
		match, err := argon2id.ComparePasswordAndHash(token, a.Hash)
		if err != nil {
			a.Logger.Error().Err(err).Msg("admin token hash invalid")
			common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "admin auth misconfigured", nil)
			return
		}
		if !match {
			common.JSONError(w, http.StatusUnauthorized, common.CodeUnauthorized, "invalid admin token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
