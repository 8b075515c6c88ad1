package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giacuong333/marketplace/internal/domain"
	"github.com/giacuong333/marketplace/internal/service"
	"github.com/giacuong333/marketplace/pkg/health"
	"github.com/giacuong333/marketplace/pkg/middleware"
)

// imageCacheMaxAge controls browser caching of category and store images.
const imageCacheMaxAge = 3600

// NewRouter creates a chi router with all marketplace admin routes registered.
func NewRouter(
	userService *service.UserService,
	storeService *service.StoreService,
	categoryService *service.CategoryService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
	pprofCIDRs []string,
	authRateLimit int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("marketplace"))
	r.Use(middleware.Tracing("marketplace"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	// Token validator bridging to the user service so revoked tokens are
	// rejected after logout.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		claims, err := userService.ValidateAccessToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	authHandler := NewAuthHandler(userService, logger)
	userHandler := NewUserHandler(userService)
	storeHandler := NewStoreHandler(storeService)
	categoryHandler := NewCategoryHandler(categoryService)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			// Throttle credential endpoints against brute forcing.
			r.Use(middleware.RateLimit(authRateLimit, authRateLimit*2, logger))

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/logout", authHandler.Logout)
			r.Post("/change-password", authHandler.ChangePassword)
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/me", userHandler.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
		})
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		// Browsing categories is public; mutations are admin only.
		r.Get("/", categoryHandler.List)
		r.Get("/{id}", categoryHandler.Get)
		r.With(middleware.CacheControl(imageCacheMaxAge)).Get("/{id}/image", categoryHandler.GetImage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/", categoryHandler.Create)
			r.Post("/import", categoryHandler.Import)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/delete-multiple", categoryHandler.DeleteMany)
			r.Delete("/{id}", categoryHandler.Delete)
		})
	})

	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", storeHandler.List)
		r.Get("/{id}", storeHandler.Get)
		r.With(middleware.CacheControl(imageCacheMaxAge)).Get("/{id}/image", storeHandler.GetImage)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleOwner))

			r.Post("/", storeHandler.Create)
			r.Post("/import", storeHandler.Import)
			r.Put("/{id}", storeHandler.Update)
			r.Delete("/delete-multiple", storeHandler.DeleteMany)
			r.Delete("/{id}", storeHandler.Delete)
		})
	})

	return r
}
