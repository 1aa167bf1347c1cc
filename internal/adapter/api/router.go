package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/leafmarket/internal/adapter/api/handler"
	"github.com/user/leafmarket/internal/adapter/api/middleware"
	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/pkg/config"
	"github.com/user/leafmarket/internal/usecase"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.StoreMetrics
	Auth     usecase.AuthUseCase
	Catalog  usecase.CatalogUseCase
	Orders   usecase.OrderUseCase
	Checkout usecase.CheckoutUseCase
	AssetDir string
}

// NewRouter creates and configures the main HTTP router.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Logger, deps.Metrics)
	productHandler := handler.NewProductHandler(deps.Catalog, deps.Logger, deps.Metrics, deps.Config.MaxUploadSize)
	orderHandler := handler.NewOrderHandler(deps.Orders, deps.Logger)
	shopHandler := handler.NewShopHandler(deps.Catalog, deps.Orders, deps.Checkout, deps.Logger, deps.Metrics)

	session := middleware.Session(deps.Auth, deps.Logger)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin, deps.Logger, deps.Metrics)
	requireCustomer := middleware.RequireRole(domain.RoleCustomer, deps.Logger, deps.Metrics)
	authLimit := middleware.RateLimit(deps.Config.AuthRateLimit, deps.Config.AuthRateBurst, deps.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Uploaded product images, when the disk-backed store is in use.
	// The bucket backend serves objects from its own host.
	if deps.AssetDir != "" {
		fileServer := http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetDir)))
		r.Get("/assets/*", fileServer.ServeHTTP)
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimit)
			auth.Post("/signup", authHandler.Signup)
			auth.Post("/login", authHandler.Login)
			auth.Post("/logout", authHandler.Logout)
			auth.Get("/session", authHandler.GetSession)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(session)
			admin.Use(requireAdmin)

			admin.Route("/products", func(products chi.Router) {
				products.Post("/", productHandler.Create)
				products.Get("/", productHandler.List)
				products.Get("/stats", productHandler.Stats)
				products.Put("/{id}", productHandler.Update)
				products.Delete("/{id}", productHandler.Delete)
				products.Post("/{id}/toggle", productHandler.ToggleStatus)
			})

			admin.Route("/orders", func(orders chi.Router) {
				orders.Get("/", orderHandler.List)
				orders.Get("/stats", orderHandler.Stats)
				orders.Put("/{id}/status", orderHandler.UpdateStatus)
			})
		})

		api.Route("/shop", func(shop chi.Router) {
			shop.Use(session)
			shop.Use(requireCustomer)

			shop.Get("/products", shopHandler.ListProducts)
			shop.Get("/categories", shopHandler.ListCategories)
			shop.Get("/orders", shopHandler.ListOrders)
			shop.Post("/checkout", shopHandler.Checkout)
		})
	})

	return r
}
