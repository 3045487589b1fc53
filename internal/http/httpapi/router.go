// Package httpapi assembles the chi router: middleware chain, versioned API
// routes, and static blob serving.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"linguachat/internal/http/handlers"
	"linguachat/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	JWTSecret       string
	AllowedOrigins  []string
	DefaultLocale   string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	StaticDir       string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	// I18N precedes Logger so the resolved locale and country are on the
	// request by the time the log line is written.
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(app.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		if opts.RateLimitPerMin > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
		}

		r.Route("/v1", func(r chi.Router) {
			r.Post("/chats", app.ChatsCreate)
			r.Get("/chats/{chat_id}", app.ChatsGet)
			r.Post("/chats/{chat_id}/messages", app.MessagesSend)
			r.Get("/chats/{chat_id}/messages", app.MessagesList)
			r.Post("/invites/{chat_id}/accept", app.InviteAccept)
			r.Get("/users/search", app.UsersSearch)
			r.Get("/me/usage", app.MeUsage)
		})
	})

	return r
}
