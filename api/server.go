/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the storefront UI

ROUTE GROUPS:
  /api/sales/*        Checkout and sale history
  /api/products/*     Catalog and stock management
  /api/customers/*    Profiles, balance ledger, consumption history
  /api/accounting/*   Financial ledger and statistics
  /api/consumption/*  Manual activity records
  /api/health         Liveness probe

SECURITY NOTE:
  No authentication middleware currently. The optional X-Operator-ID
  header identifies the acting staff member for audit only.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Operator-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Sale routes
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.ListSales)
			r.Post("/", h.CreateSale)
			r.Get("/{id}", h.GetSale)
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			r.Get("/{id}", h.GetProduct)
			r.Put("/{id}", h.UpdateProduct)
			r.Put("/{id}/stock", h.SetStock)
			r.Delete("/{id}", h.DeleteProduct)
		})

		// Customer routes
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
			r.Post("/{id}/recharge", h.Recharge)
			r.Post("/{id}/deduct", h.Deduct)
			r.Post("/{id}/refund", h.Refund)
			r.Get("/{id}/balance-history", h.BalanceHistory)
			r.Get("/{id}/consumption-records", h.ListConsumption)
			r.Post("/{id}/consumption-records", h.CreateConsumption)
		})

		// Accounting routes. Fixed paths are registered before the
		// {id} wildcard so chi does not swallow them.
		r.Route("/accounting", func(r chi.Router) {
			r.Get("/", h.ListAccounting)
			r.Post("/", h.CreateAccounting)
			r.Get("/statistics", h.Statistics)
			r.Get("/statistics/monthly", h.MonthlyStatistics)
			r.Get("/{id}", h.GetAccounting)
			r.Put("/{id}", h.UpdateAccounting)
			r.Delete("/{id}", h.DeleteAccounting)
		})

		// Consumption record routes
		r.Route("/consumption", func(r chi.Router) {
			r.Delete("/{id}", h.DeleteConsumption)
		})

		r.Get("/health", h.Health)
	})

	return r
}
