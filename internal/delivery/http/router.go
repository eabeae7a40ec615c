package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/product_catalog/internal/config"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/handler"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/middleware"
	"github.com/Pesokrava/product_catalog/internal/delivery/http/response"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

const requestTimeout = 30 * time.Second

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Product *handler.ProductHandler
	Like    *handler.LikeHandler
	User    *handler.UserHandler
	Auth    *handler.AuthHandler
}

// Router holds HTTP handlers and router configuration
type Router struct {
	handlers    Handlers
	tokens      *auth.TokenIssuer
	accounts    middleware.Accounts
	authLimiter *middleware.RateLimiter
	logger      *logger.Logger
	cfg         *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	handlers Handlers,
	tokens *auth.TokenIssuer,
	accounts middleware.Accounts,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		handlers:    handlers,
		tokens:      tokens,
		accounts:    accounts,
		authLimiter: authLimiter,
		logger:      log,
		cfg:         cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(rt.tokens, rt.accounts)
	optionalAuth := middleware.OptionalAuth(rt.tokens, rt.accounts)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if rt.authLimiter != nil {
				r.Use(rt.authLimiter.Middleware())
			}
			r.Post("/register", rt.handlers.Auth.Register)
			r.Post("/login", rt.handlers.Auth.Login)
			r.Post("/refresh", rt.handlers.Auth.Refresh)
		})

		r.Route("/products", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", rt.handlers.Product.List)
				r.Get("/search", rt.handlers.Product.Search)
				r.Get("/{id}", rt.handlers.Product.GetByID)
				r.Get("/{id}/likes", rt.handlers.Like.Likes)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", rt.handlers.Product.Create)
				r.Put("/{id}", rt.handlers.Product.Update)
				r.Delete("/{id}", rt.handlers.Product.Delete)
				r.Post("/{id}/like", rt.handlers.Like.Toggle)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/profile", rt.handlers.User.Profile)
			r.Get("/{id}", rt.handlers.User.GetByID)
			r.Put("/{id}", rt.handlers.User.Update)
			r.Delete("/{id}", rt.handlers.User.Delete)
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
