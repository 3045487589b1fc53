package middleware

import "net/http"

// corsHeaders are the request headers the chat client sends cross-origin,
// including X-Locale for explicit translation-target overrides.
const corsHeaders = "Authorization, Content-Type, X-Locale"

// CORS allows browser clients on the configured origins. Unknown origins get
// no CORS headers at all; preflights are answered without hitting handlers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allow[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := allow[origin]; ok {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Vary", "Origin")
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Set("Access-Control-Allow-Headers", corsHeaders)
					h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
