package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/itchan-dev/authgate/backend/internal/setup"
	mw "github.com/itchan-dev/authgate/shared/middleware"
	"github.com/itchan-dev/authgate/shared/middleware/metrics"
)

// JSON API only, the verification page carries no scripts or styles
const backendCSP = "default-src 'none'; frame-ancestors 'none'"

// New creates and configures a new chi router with all the routes.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	r.Use(mw.SecurityHeadersWithCSP(deps.IsHTTPS, backendCSP))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Get("/verify_email", h.VerifyEmail)
			r.Post("/login", h.Login)
			r.Post("/resend_verification", h.ResendVerification)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Get("/me", h.Me)
			r.Method(http.MethodPost, "/completions", deps.Completions)
		})
	})

	return r
}
