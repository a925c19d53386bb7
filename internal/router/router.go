package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"go-auth-api/internal/config"
	"go-auth-api/internal/handler"
	"go-auth-api/internal/metrics"
	"go-auth-api/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Users  *handler.UserHandler
	Health *handler.HealthHandler
	LLM    *handler.LLMHandler
	Docs   *handler.DocsHandler
}

func New(cfg *config.Config, guard *middleware.AuthGuard, m *metrics.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, cfg.APIPrefix+"/auth")

	r.Use(middleware.Recovery)
	if cfg.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", h.Health.Root)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/docs", h.Docs.SwaggerUI)

	r.Route(cfg.APIPrefix, func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/login-form", h.Auth.LoginForm)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/password-reset/request", h.Auth.RequestPasswordReset)
			auth.Post("/password-reset/confirm", h.Auth.ConfirmPasswordReset)
			auth.With(guard.Authenticate).Get("/me", h.Auth.Me)
			auth.With(guard.Authenticate).Post("/change-password", h.Auth.ChangePassword)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(guard.Authenticate)

			users.With(guard.SuperuserOnly).Get("/", h.Users.List)
			users.With(guard.SuperuserOnly).Post("/", h.Users.Create)
			users.Get("/me", h.Users.GetMe)
			users.Put("/me", h.Users.UpdateMe)
			users.Get("/{id}", h.Users.Get)
			users.Put("/{id}", h.Users.Update)
		})

		api.Get("/health", h.Health.Health)
		api.Get("/health/live", h.Health.Live)
		api.Get("/health/ready", h.Health.Ready)

		api.Route("/llm", func(llmRoutes chi.Router) {
			llmRoutes.Use(guard.OptionalAuth)

			llmRoutes.Post("/chat", h.LLM.Chat)
			llmRoutes.Post("/blog/generate", h.LLM.GenerateBlog)
		})
	})

	return r
}
