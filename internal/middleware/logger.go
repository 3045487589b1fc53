package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger emits one structured line per request. It must sit after RequestID
// and I18N in the chain so the correlation id and the resolved locale and
// country are in the request context.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			evt := l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.status).
				Dur("elapsed", time.Since(start)).
				Str("request_id", RequestIDFromContext(r.Context())).
				Str("locale", LocaleFromContext(r.Context()))
			if country := CountryFromContext(r.Context()); country != "" {
				evt = evt.Str("country", country)
			}
			evt.Msg("request")
		})
	}
}
