package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgeline/forgeline/internal/auth"
	"github.com/forgeline/forgeline/internal/inventory"
	"github.com/forgeline/forgeline/internal/platform/httpx"
	"github.com/forgeline/forgeline/internal/procurement"
	"github.com/forgeline/forgeline/internal/production"
	"github.com/forgeline/forgeline/internal/quality"
	"github.com/forgeline/forgeline/internal/sales"
	"github.com/forgeline/forgeline/internal/shared"
	"github.com/forgeline/forgeline/internal/users"
	"github.com/forgeline/forgeline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	SalesHandler       *sales.Handler
	ProcurementHandler *procurement.Handler
	InventoryHandler   *inventory.Handler
	QualityHandler     *quality.Handler
	ProductionHandler  *production.Handler
	JobsHandler        *jobs.Handler
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         p.Logger,
		Config:         p.Config,
		SessionManager: p.SessionManager,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", p.AuthHandler.MountRoutes)
	r.Route("/users", p.UsersHandler.MountRoutes)
	r.Route("/sales/quotations", p.SalesHandler.MountRoutes)
	r.Route("/purchasing/orders", p.ProcurementHandler.MountRoutes)
	r.Route("/inventory/parts", p.InventoryHandler.MountRoutes)
	r.Route("/quality/inspections", p.QualityHandler.MountRoutes)
	r.Route("/production/orders", p.ProductionHandler.MountRoutes)
	if p.JobsHandler != nil {
		r.Route("/jobs", p.JobsHandler.MountRoutes)
	}

	return r
}
