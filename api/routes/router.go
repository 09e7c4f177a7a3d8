package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gmchicks/storefront-backend/api/controllers"
	"github.com/gmchicks/storefront-backend/api/middleware"
	"github.com/gmchicks/storefront-backend/internal/cart"
	"github.com/gmchicks/storefront-backend/internal/orders"
	"github.com/gmchicks/storefront-backend/internal/payments"
	"github.com/gmchicks/storefront-backend/internal/products"
	"github.com/gmchicks/storefront-backend/internal/visits"
	"github.com/gmchicks/storefront-backend/pkg/config"
	"github.com/gmchicks/storefront-backend/pkg/enums"
	"github.com/gmchicks/storefront-backend/pkg/logger"
	pkgredis "github.com/gmchicks/storefront-backend/pkg/redis"
)

type redisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
	pkgredis.Pinger
}

type httpObserver interface {
	Observe(method, route string, status int, elapsed time.Duration)
}

// Dependencies carries the services and clients the API routes need.
type Dependencies struct {
	DB             controllers.Pinger
	Redis          redisStore
	HTTPMetrics    httpObserver
	MetricsHandler http.Handler

	Products products.Service
	Cart     cart.Service
	Orders   orders.Service
	Payments payments.Service
	Visits   visits.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	if cfg.App.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.App.RequestTimeout))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", controllers.Health(cfg, nil))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	apiPolicy := middleware.RateLimitPolicy{
		Name:   "api",
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
	}
	idempotent := middleware.Idempotency(deps.Redis, logg)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiPolicy, deps.Redis, logg))

		r.Get("/products", controllers.ProductList(deps.Products, logg))
		r.Get("/products/{productId}", controllers.ProductDetail(deps.Products, logg))

		r.Route("/vaccinations", func(r chi.Router) {
			r.Get("/schedule", controllers.VaccinationSchedule(logg))
			r.Get("/tips", controllers.VaccinationTips())
			r.Get("/upcoming", controllers.VaccinationUpcoming(logg))
		})

		r.Get("/visits/availability/{date}", controllers.VisitAvailability(deps.Visits, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Cart, logg))
				r.Post("/", controllers.CartSetLine(deps.Cart, logg))
				r.Post("/increment", controllers.CartIncrementLine(deps.Cart, logg))
				r.Post("/reconcile", controllers.CartReconcile(deps.Cart, logg))
				r.Put("/clear", controllers.CartClear(deps.Cart, logg))
				r.Delete("/{productId}", controllers.CartRemoveLine(deps.Cart, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(idempotent).Post("/", controllers.OrderPlace(deps.Orders, logg))
				r.Get("/", controllers.OrderList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			})

			r.With(idempotent).Post("/payments/initiate", controllers.PaymentInitiate(deps.Payments, logg))

			r.Post("/visits", controllers.VisitBook(deps.Visits, logg))
			r.Get("/visits", controllers.VisitList(deps.Visits, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.RoleAdmin, logg))

				r.Get("/stats", controllers.AdminStats(deps.Orders, logg))

				r.Get("/orders", controllers.AdminOrderList(deps.Orders, logg))
				r.Put("/orders/{orderId}/status", controllers.AdminOrderTransition(deps.Orders, logg))

				r.Get("/products", controllers.AdminProductList(deps.Products, logg))
				r.Post("/products", controllers.AdminCreateProduct(deps.Products, logg))
				r.Put("/products/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
				r.Delete("/products/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))

				r.Get("/visits", controllers.AdminVisitList(deps.Visits, logg))
				r.Put("/visits/{visitId}/status", controllers.AdminVisitTransition(deps.Visits, logg))
			})
		})
	})

	return r
}

func readinessDeps(deps Dependencies) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["postgres"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
