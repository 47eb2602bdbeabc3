package auth

import (
	"fmt"
	"net/http"
	"time"

	"ms-booking/internal/logger"
)

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every API request with method, path, status and
// duration, enriched with the holder ID read from the bearer token without
// verification. Enrichment only: authorization still happens in Middleware.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if token, err := ExtractTokenFromRequest(r); err == nil {
				if holderID, err := ExtractHolderIDFromJWT(token); err == nil {
					path = fmt.Sprintf("%s holder=%s", path, holderID)
				}
			}

			log.LogAPI(r.Method, path, fmt.Sprintf("%d", rec.status), time.Since(start).String())
		})
	}
}
