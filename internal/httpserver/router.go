package httpserver

import (
	"famlink/internal/config"
	"famlink/internal/httpserver/handlers"
	"famlink/internal/metrics"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func NewRouter(cfg *config.Config, store handlers.Store, lg *zap.SugaredLogger, rec *metrics.Recorder) http.Handler {
	h := handlers.New(store, lg, handlers.Options{
		BodyLimit:         cfg.BodyLimit,
		ExposeErrorDetail: !cfg.IsProduction(),
	})

	r := chi.NewRouter()
	r.Use(RequestID, middleware.RealIP, AccessLog(lg), Recoverer(lg, !cfg.IsProduction()))
	if rec != nil {
		r.Use(rec.Middleware)
	}
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.Limit(cfg.RateLimit, cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				handlers.WriteError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later.", "")
			}),
		))
	}
	r.Use(middleware.Compress(5))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	r.Route("/api", func(api chi.Router) {
		mount(api, "/tenants", h.Tenants())
		mount(api, "/users", h.Users())
		mount(api, "/devices", h.Devices())
		mount(api, "/apps", h.Apps())
	})
	r.Get("/health", h.Health)
	if rec != nil {
		r.Method(http.MethodGet, "/metrics", rec.Handler())
	}
	return r
}

func mount(r chi.Router, prefix string, set handlers.Set) {
	r.Route(prefix, func(sub chi.Router) {
		sub.NotFound(handlers.NotFound)
		sub.MethodNotAllowed(handlers.NotFound)
		sub.Get("/", set.List)
		sub.Post("/", set.Create)
		sub.Get("/{id}", set.Get)
		sub.Put("/{id}", set.Update)
		sub.Delete("/{id}", set.Delete)
	})
}
