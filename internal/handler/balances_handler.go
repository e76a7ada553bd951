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
// Balances, rollover & sales entries
// ============================================================

func getBalancesHandler(svc *service.BalancesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/balances")
		defer span.End()

		writeJSON(w, http.StatusOK, toBalancesResponse(svc.Balances(ctx)))
	}
}

func setOpeningBalanceHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/balances/opening")
		defer span.End()

		var req openingBalanceRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		b, err := svc.SetOpeningBalance(ctx, domain.OpeningBalance{
			ChannelA: *req.ChannelA,
			ChannelB: *req.ChannelB,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toBalancesResponse(b))
	}
}

func rolloverHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/balances/rollover")
		defer span.End()

		// An empty body rolls over without resetting sales.
		var req rolloverRequest
		if r.ContentLength != 0 {
			if err := decodeBody(r, &req); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		b, err := svc.SetNextDayOpeningBalance(ctx, req.ResetSales)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, toBalancesResponse(b))
	}
}

func saveHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/balances/save")
		defer span.End()

		if err := svc.Flush(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "data saved"})
	}
}

func summaryHandler(svc *service.BalancesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summary")
		defer span.End()

		writeJSON(w, http.StatusOK, toSummaryResponse(svc.Summary(ctx)))
	}
}

func listSalesEntriesHandler(svc *service.BalancesService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sales-entries")
		defer span.End()

		entries := toSalesEntryRecords(svc.SalesEntries(ctx))
		writeJSON(w, http.StatusOK, domain.ListResponse[interchange.SalesEntryRecord]{
			Data:     entries,
			Total:    len(entries),
			Page:     1,
			PageSize: len(entries),
		})
	}
}

func updateSalesEntryHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/sales-entries/{employeeId}/{channel}")
		defer span.End()

		employeeID := chi.URLParam(r, "employeeId")
		channel, err := domain.ParseChannel(chi.URLParam(r, "channel"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("employee.id", employeeID), attribute.String("channel", channel.String()))

		var req salesEntryRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		entry, err := svc.UpdateSalesEntry(ctx, employeeID, channel, parseLooseAmount(req.Value))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, interchange.FromSalesEntry(entry))
	}
}
