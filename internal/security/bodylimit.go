package security

import (
	"net/http"

	"github.com/noah-isme/backend-vlyx/internal/common"
)

// BodyLimit caps request bodies at Max bytes. A declared Content-Length above the cap is refused
// up front; undeclared bodies are cut off while the handler reads them, and common.DecodeJSON
// turns the overflow into the same 413 response.
type BodyLimit struct {
	Max int64
}

func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	if b.Max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			common.WriteError(w, common.PayloadTooLarge(b.Max))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}
