package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mynature/storefront/internal/admin"
	"github.com/mynature/storefront/internal/auth"
	"github.com/mynature/storefront/internal/catalog"
	"github.com/mynature/storefront/internal/dashboard"
	"github.com/mynature/storefront/internal/order"
)

// LoginPath is where unauthenticated and unauthorized visitors are sent.
const LoginPath = "/admin/login"

type RouterDeps struct {
	Catalog   catalog.Service
	Orders    order.Service
	Auth      auth.Service
	Allowlist admin.Allowlist
	Gate      *admin.Gate
	Dashboard *dashboard.Service
	Uploader  Uploader
}

func NewRouter(deps RouterDeps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	catalogHandler := NewCatalogHandler(deps.Catalog)
	orderHandler := NewOrderHandler(deps.Orders)
	authHandler := NewAuthHandler(deps.Auth, deps.Allowlist)
	adminHandler := NewAdminHandler(deps.Catalog, deps.Orders, deps.Dashboard, deps.Uploader)

	router.Route("/api", func(api chi.Router) {
		catalogHandler.RegisterRoutes(api)
		orderHandler.RegisterRoutes(api)
		authHandler.RegisterRoutes(api)

		api.Route("/admin", func(protected chi.Router) {
			protected.Use(RequireAdmin(deps.Gate))
			adminHandler.RegisterRoutes(protected)
		})
	})

	return router
}
