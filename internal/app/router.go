package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega/internal/auth"
	"github.com/bodega-pos/bodega/internal/catalog"
	"github.com/bodega-pos/bodega/internal/checkout"
	"github.com/bodega-pos/bodega/internal/creditbook"
	"github.com/bodega-pos/bodega/internal/ledger"
	"github.com/bodega-pos/bodega/internal/reporting"
	"github.com/bodega-pos/bodega/internal/shared"
	"github.com/bodega-pos/bodega/internal/till"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthMiddleware auth.Middleware

	AuthHandler       *auth.Handler
	CatalogHandler    *catalog.Handler
	CheckoutHandler   *checkout.Handler
	LedgerHandler     *ledger.Handler
	CreditbookHandler *creditbook.Handler
	ReportingHandler  *reporting.Handler
	TillHandler       *till.Handler

	Pool *pgxpool.Pool
}

// NewRouter constructs the chi.Router for the API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
	})

	// Everything else requires a logged-in operator. Route groups add the
	// capability each module's reads need; mutating services re-check their
	// own capability regardless.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.WithOperator)

		r.Route("/catalog", func(r chi.Router) {
			params.CatalogHandler.MountRoutes(r)
		})
		r.Route("/checkout", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireCapability(shared.CapRingSales))
			params.CheckoutHandler.MountRoutes(r)
		})
		r.Route("/ledger", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireCapability(shared.CapRecordLedger))
			params.LedgerHandler.MountRoutes(r)
		})
		r.Route("/credit", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireCapability(shared.CapSettleCredit))
			params.CreditbookHandler.MountRoutes(r)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireCapability(shared.CapViewFinancials))
			params.ReportingHandler.MountRoutes(r)
		})
		r.Route("/till", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireCapability(shared.CapViewFinancials))
			params.TillHandler.MountRoutes(r)
		})
	})

	return r
}
