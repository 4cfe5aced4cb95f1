package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"positions-console/internal/config"
	"positions-console/internal/handler"
	"positions-console/internal/middleware"
	"positions-console/internal/observability"
	"positions-console/internal/websocket"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Positions *handler.PositionsHandler
}

func New(
	cfg *config.Config,
	log *slog.Logger,
	metrics *observability.Metrics,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
	hub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(log, metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Navigation)

	r.Get("/health", handler.Health)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", hub.ServeWS)

	r.Group(func(web chi.Router) {
		web.Use(middleware.Timeout(cfg.RequestTimeout))
		web.Use(middleware.CSRF(nil))

		web.Get("/", h.Auth.Home)
		web.Get("/login", h.Auth.LoginPage)
		web.Post("/login", h.Auth.Login)
		web.Get("/register", h.Auth.RegisterPage)
		web.Post("/register", h.Auth.Register)
		web.Post("/logout", h.Auth.Logout)

		web.Route("/dashboard", func(dash chi.Router) {
			dash.Use(authMiddleware.RequireSession)

			dash.Get("/", h.Dashboard.Show)
			dash.Get("/positions", h.Positions.Index)
			dash.Post("/positions", h.Positions.Submit)
			dash.Post("/positions/refresh", h.Positions.Refresh)
			dash.Post("/positions/cancel", h.Positions.Cancel)
			dash.Post("/positions/{id}/edit", h.Positions.Edit)
			dash.Get("/positions/{id}/delete", h.Positions.ConfirmDelete)
			dash.Post("/positions/{id}/delete", h.Positions.Delete)
		})
	})

	return r
}
