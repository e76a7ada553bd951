package handler

import (
	"net/http"
	"strings"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/service"

	"go.uber.org/zap"
)

// IdempotencyHeader carries a client chosen key that makes a transaction
// submission safe to retry.
const IdempotencyHeader = "Idempotency-Key"

// ============================================================
// Transactions
// ============================================================

func listTransactionsHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		filter, err := parseFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		page, pageSize := parsePagination(r)

		txs, total := svc.ListTransactions(ctx, filter, page, pageSize)
		writeJSON(w, http.StatusOK, domain.ListResponse[interchange.TransactionRecord]{
			Data:     toTransactionRecords(txs),
			Total:    total,
			Page:     page,
			PageSize: pageSize,
			HasMore:  hasMore(page, pageSize, len(txs), total),
		})
	}
}

func recordTransactionHandler(svc *service.BalancesService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var req recordTransactionRequest
		if err := decodeBody(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		channel, err := domain.ParseChannel(req.Type)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		tx, replayed, err := svc.RecordTransaction(ctx, service.RecordTransactionInput{
			EmployeeID:     req.EmployeeID,
			Type:           channel,
			Amount:         *req.Amount,
			Description:    req.Description,
			IdempotencyKey: strings.TrimSpace(r.Header.Get(IdempotencyHeader)),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		status := http.StatusCreated
		if replayed {
			w.Header().Set("Idempotent-Replayed", "true")
			status = http.StatusOK
		}
		writeJSON(w, status, interchange.FromTransaction(tx))
	}
}

// hasMore reports whether records follow this page. An empty page is past
// the end, which keeps the multiplication below within total.
func hasMore(page, pageSize, got, total int) bool {
	if got == 0 {
		return false
	}
	return (page-1)*pageSize+got < total
}
