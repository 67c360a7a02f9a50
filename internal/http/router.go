package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/uploads", handler.Upload)

		r.Get("/vendors", handler.ListVendors)
		r.Get("/vendors/{vendor}/aggregates", handler.VendorAggregates)
		r.Get("/vendors/{vendor}/hierarchy", handler.VendorHierarchy)
		r.Get("/vendors/{vendor}/alerts", handler.VendorAlerts)
		r.Get("/vendors/{vendor}/quantity-changes", handler.VendorQuantityChanges)
		r.Post("/vendors/{vendor}/compare", handler.VendorCompare)

		r.Delete("/vendors/{vendor}/months/{year}/{month}", handler.ClearMonth)
		r.Delete("/vendors/{vendor}", handler.ClearVendor)
		r.Delete("/ledgers", handler.ClearAll)
	})

	return r
}
