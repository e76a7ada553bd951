package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/infra/observability"
	"github.com/boddenberg/daily-balances-go/internal/infra/resilience"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Options tunes the file transfer routes.
type Options struct {
	// MaxImportBytes caps the size of an uploaded snapshot. Zero disables
	// the cap.
	MaxImportBytes int64
	// MaxConcurrentFiles bounds concurrent imports and exports.
	MaxConcurrentFiles int
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc *service.BalancesService, metrics *observability.Metrics, logger *zap.Logger, opts Options) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	files := resilience.NewBulkhead(opts.MaxConcurrentFiles)

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// Balances
		r.Get("/balances", getBalancesHandler(svc))
		r.Put("/balances/opening", setOpeningBalanceHandler(svc, logger))
		r.Post("/balances/rollover", rolloverHandler(svc, logger))
		r.Post("/balances/save", saveHandler(svc, logger))
		r.Get("/summary", summaryHandler(svc))

		// Employees
		r.Get("/employees", listEmployeesHandler(svc))
		r.Post("/employees", addEmployeeHandler(svc, logger))
		r.Get("/employees/{employeeId}/account", accountDetailsHandler(svc, logger))

		// Sales entries
		r.Get("/sales-entries", listSalesEntriesHandler(svc))
		r.Put("/sales-entries/{employeeId}/{channel}", updateSalesEntryHandler(svc, logger))

		// Transactions
		r.Get("/transactions", listTransactionsHandler(svc, logger))
		r.Post("/transactions", recordTransactionHandler(svc, logger))

		// Files
		r.Group(func(r chi.Router) {
			r.Use(bulkheadMiddleware(files, logger))
			r.Get("/export/snapshot", exportSnapshotHandler(svc, logger))
			r.Post("/import/snapshot", importSnapshotHandler(svc, opts.MaxImportBytes, logger))
			r.Get("/export/transactions", exportTransactionsHandler(svc, logger))
			r.Get("/export/sales-entries", exportSalesEntriesHandler(svc, logger))
		})
	})

	return r
}

// bulkheadMiddleware rejects requests that cannot get a slot before their
// context ends.
func bulkheadMiddleware(b *resilience.Bulkhead, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := b.Acquire(r.Context()); err != nil {
				logger.Warn("bulkhead full", zap.String("path", r.URL.Path), zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "too many concurrent file transfers")
				return
			}
			defer b.Release()
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================
// Health
// ============================================================

func healthzHandler(svc *service.BalancesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "balances-api", Status: "healthy", LastChecked: now},
			svc.Health(r.Context()),
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		status := http.StatusOK
		if overallStatus == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
