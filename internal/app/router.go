package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/docket-th/docket/internal/analytics/http"
	"github.com/docket-th/docket/internal/auth"
	"github.com/docket-th/docket/internal/catalog"
	"github.com/docket-th/docket/internal/files"
	"github.com/docket-th/docket/internal/sales"
	"github.com/docket-th/docket/internal/sales/customers"
	"github.com/docket-th/docket/internal/scheduling"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	RequireAuth        func(http.Handler) http.Handler
	CustomersHandler   *customers.Handler
	ProductsHandler    *catalog.Handler
	SalesHandler       *sales.Handler
	SchedulingHandler  *scheduling.Handler
	FilesHandler       *files.Handler
	AnalyticsHandler   *analytichttp.Handler
}

// NewRouter constructs the chi.Router serving the document API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.RequireAuth)
			params.CustomersHandler.MountRoutes(r)
			params.ProductsHandler.MountRoutes(r)
			params.SalesHandler.MountRoutes(r)
			params.SchedulingHandler.MountRoutes(r)
			params.FilesHandler.MountRoutes(r)
			params.AnalyticsHandler.MountRoutes(r)
		})
	})

	// Stored attachments are public reads; auth only guards mutation.
	if params.Config != nil && params.Config.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Handle("/uploads/*", fileServer)
	}

	return r
}
