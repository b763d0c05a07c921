package core

import (
	"fmt"
	"net/http"
	"time"

	c "bridge/internal/cache"
	m "bridge/internal/middlewares"
	"bridge/internal/models"
	"bridge/internal/provider"
	"bridge/internal/reconcile"
	"bridge/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func StartHTTPServer(
	config models.Configuration,
	db *gorm.DB,
	cache c.ICache,
	client *provider.Client,
) {
	r := chi.NewRouter()

	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(m.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authConfig := config.App.GetAuthConfig()

	refresher := provider.NewCoordinator(client)
	resolver := provider.NewResolver(client, refresher)
	reconciler := &reconcile.Reconciler{DB: db, AuthConfig: authConfig}

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(m.RateLimit(cache, config.App.TrustedProxies, config.App.RateLimitPerMinute))

		apiRouter.Mount("/v1/identity", services.IdentityService{
			DB:             db,
			AuthConfig:     authConfig,
			ProviderConfig: config.Provider,
			Resolver:       resolver,
			Refresher:      refresher,
			Management:     client,
			Reconciler:     reconciler,
		}.Routes())
	})

	zap.L().Info("HTTP server starting", zap.Int("port", config.App.Port))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.App.Port),
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	err := server.ListenAndServe()
	if err != nil {
		zap.L().Error("Failed to start the app", zap.Error(err))
	}
}
