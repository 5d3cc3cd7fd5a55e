package middleware

import (
	"net/http"

	"github.com/craftmind/contextd/internal/api"
)

// MaxBodyBytes rejects request bodies larger than limit bytes. Oversized
// declared lengths are refused up front; chunked bodies are cut off by
// http.MaxBytesReader once the limit is crossed.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Body == nil:
				next.ServeHTTP(w, r)
			case r.ContentLength > limit:
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			default:
				r.Body = http.MaxBytesReader(w, r.Body, limit)
				next.ServeHTTP(w, r)
			}
		})
	}
}
