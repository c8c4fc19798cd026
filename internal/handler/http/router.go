package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/martinmiralles/mar-pokemart/internal/service"
	"github.com/martinmiralles/mar-pokemart/pkg/health"
	"github.com/martinmiralles/mar-pokemart/pkg/middleware"
)

// topProductsMaxAge is the client cache lifetime of GET /api/products/top.
const topProductsMaxAge = 60 * time.Second

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	ServiceName string

	UserService    *service.UserService
	ProductService *service.ProductService
	ReviewService  *service.ReviewService
	OrderService   *service.OrderService

	Authenticator *Authenticator
	Health        *health.Handler

	// Optional.
	Metrics      *middleware.HTTPMetrics
	MetricsRoute http.Handler
	AuthLimiter  *middleware.RateLimiter
	CORS         middleware.CORSConfig
	PprofCIDRs   []string
	EnablePprof  bool

	Logger *slog.Logger
}

// NewRouter creates a chi router with every storefront route registered.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	if cfg.ServiceName != "" {
		r.Use(middleware.Tracing(cfg.ServiceName))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.RequestLogger(logger))

	// Health and metrics endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.MetricsRoute != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsRoute)
	}
	if cfg.EnablePprof {
		middleware.MountPprof(r, cfg.PprofCIDRs, logger)
	}

	authenticate := cfg.Authenticator.Middleware
	adminOnly := RequireAdmin(logger)

	userHandler := NewUserHandler(cfg.UserService, logger)
	productHandler := NewProductHandler(cfg.ProductService, logger)
	reviewHandler := NewReviewHandler(cfg.ReviewService, logger)
	orderHandler := NewOrderHandler(cfg.OrderService, logger)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware)
			}
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/profile", userHandler.GetProfile)
			r.Put("/profile", userHandler.UpdateProfile)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", userHandler.ListUsers)
				r.Get("/{id}", userHandler.GetUser)
				r.Put("/{id}", userHandler.UpdateUser)
				r.Delete("/{id}", userHandler.DeleteUser)
			})
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.With(middleware.CacheControl(topProductsMaxAge)).Get("/top", productHandler.TopProducts)
		r.Get("/{id}", productHandler.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.With(adminOnly).Post("/", productHandler.CreateProduct)
			r.Put("/{id}", productHandler.UpdateProduct)
			r.Delete("/{id}", productHandler.DeleteProduct)
			r.Post("/{id}/reviews", reviewHandler.CreateReview)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)

		r.Post("/", orderHandler.CreateOrder)
		r.Get("/mine", orderHandler.MyOrders)
		r.Get("/{id}", orderHandler.GetOrder)
		r.Put("/{id}/pay", orderHandler.PayOrder)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", orderHandler.ListOrders)
			r.Put("/{id}/deliver", orderHandler.DeliverOrder)
		})
	})

	return r
}
