package handler

import (
	"net/http"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Employees (distributors)
// ============================================================

func listEmployeesHandler(svc *service.BalancesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/employees")
		defer span.End()

		emps := toEmployeeRecords(svc.Employees(ctx))
		writeJSON(w, http.StatusOK, domain.ListResponse[interchange.EmployeeRecord]{
			Data:     emps,
			Total:    len(emps),
			Page:     1,
			PageSize: len(emps),
		})
	}
}

func addEmployeeHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/employees")
		defer span.End()

		var req addEmployeeRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		emp, err := svc.AddEmployee(ctx, req.Name)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, interchange.FromEmployee(emp))
	}
}

func accountDetailsHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/employees/{employeeId}/account")
		defer span.End()

		employeeID := chi.URLParam(r, "employeeId")
		span.SetAttributes(attribute.String("employee.id", employeeID))

		details, err := svc.AccountDetails(ctx, employeeID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(details))
	}
}
