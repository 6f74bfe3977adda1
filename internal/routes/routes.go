package routes

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/dayjournal/backend/docs"
	"github.com/dayjournal/backend/internal/config"
	"github.com/dayjournal/backend/internal/database"
	"github.com/dayjournal/backend/internal/handlers"
	mw "github.com/dayjournal/backend/internal/middleware"
	"github.com/dayjournal/backend/web"
)

// Deps is everything the router needs. Redis may be nil.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Source  *database.Source
	Store   handlers.EntryStore
	Redis   *redis.Client
	Version string
}

// SetupRoutes builds the HTTP handler for the service.
func SetupRoutes(d Deps) (http.Handler, error) {
	entryHandler := handlers.NewEntryHandler(d.Store, d.Logger)
	healthHandler := handlers.NewHealthHandler(d.Source, d.Redis, d.Version)
	indexHandler, err := handlers.NewIndexHandler(web.Templates, d.Version, d.Config.Auth.Enabled(), d.Logger)
	if err != nil {
		return nil, fmt.Errorf("load landing page: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	// Forwarding headers are client controlled unless a proxy rewrites them,
	// and the rate limiter keys on the resulting address.
	if d.Config.Server.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(mw.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(d.Config.Server.HandlerTimeout()))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	// Health checks
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Swagger UI ships inline scripts, so it stays outside the CSP group.
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Use(mw.SecurityHeaders)

		r.Get("/", indexHandler.ServeHTTP)
		r.Handle("/static/*", http.StripPrefix("/static", mw.StaticFileServer(web.Static())))

		r.Route("/api", func(r chi.Router) {
			if d.Redis != nil {
				limiter := mw.NewRateLimiter(d.Redis, d.Config.RateLimit.Requests, d.Config.RateLimit.Window, d.Logger)
				r.Use(limiter.Middleware)
			}
			if d.Config.Auth.Enabled() {
				r.Use(mw.Auth(d.Config.Auth.JWTSecret, d.Config.Auth.Issuer))
			}

			r.Get("/entries", entryHandler.ListEntries)
			r.Post("/entries", entryHandler.CreateEntry)
			r.Put("/entries/{id:[1-9][0-9]*}", entryHandler.UpdateEntry)
			r.Delete("/entries/{id:[1-9][0-9]*}", entryHandler.DeleteEntry)
		})
	})

	return r, nil
}
