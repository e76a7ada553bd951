package service

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecordTransactionInput is a new transaction as submitted by a caller.
type RecordTransactionInput struct {
	EmployeeID     string
	Type           domain.Channel
	Amount         decimal.Decimal
	Description    string
	IdempotencyKey string
}

// RecordTransaction appends a transaction stamped with today's date and adds
// its amount to the employee's sales entry on the same channel. Both happen
// or neither does: an overdraft rejects the whole transaction.
//
// A repeated IdempotencyKey returns the transaction recorded the first time
// with replayed set, without touching the ledger again.
func (s *BalancesService) RecordTransaction(ctx context.Context, in RecordTransactionInput) (tx domain.EmployeeTransaction, replayed bool, err error) {
	ctx, span := tracer.Start(ctx, "BalancesService.RecordTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("employee.id", in.EmployeeID),
		attribute.String("channel", in.Type.String()),
		attribute.String("amount", in.Amount.String()),
	)
	defer s.observe("record_transaction", time.Now())

	if strings.TrimSpace(in.EmployeeID) == "" {
		return domain.EmployeeTransaction{}, false, &domain.ErrValidation{Field: "employeeId", Message: "employee is required"}
	}
	if !in.Type.Valid() {
		return domain.EmployeeTransaction{}, false, &domain.ErrValidation{Field: "type", Message: "unknown channel " + in.Type.String()}
	}
	if !in.Amount.IsPositive() {
		s.metrics.IncrRejection("non_positive_amount", in.Type)
		return domain.EmployeeTransaction{}, false, &domain.ErrValidation{Field: "amount", Message: "amount must be greater than zero"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.IdempotencyKey != "" && s.idem != nil {
		if prev, ok := s.idem.Get(in.IdempotencyKey); ok {
			s.metrics.IncrCacheHit("idempotency")
			s.logger.Debug("transaction replayed", zap.String("idempotency_key", in.IdempotencyKey), zap.String("transaction_id", prev.ID))
			return prev, true, nil
		}
		s.metrics.IncrCacheMiss("idempotency")
	}

	entry, ok := s.store.SalesEntry(in.EmployeeID)
	if !ok {
		return domain.EmployeeTransaction{}, false, &domain.ErrValidation{Field: "employeeId", Message: "unknown employee " + in.EmployeeID}
	}

	if _, err := s.applySalesValueLocked(in.EmployeeID, in.Type, entry.Amount(in.Type).Add(in.Amount)); err != nil {
		return domain.EmployeeTransaction{}, false, err
	}

	tx = domain.EmployeeTransaction{
		ID:          s.store.NewTransactionID(),
		EmployeeID:  in.EmployeeID,
		Type:        in.Type,
		Amount:      in.Amount,
		Date:        s.now().Format(domain.DateLayout),
		Description: strings.TrimSpace(in.Description),
	}
	s.store.PrependTransaction(tx)
	s.commitLocked(ctx, "record_transaction")

	s.metrics.RecordTransaction(tx)
	if in.IdempotencyKey != "" && s.idem != nil {
		s.idem.Set(in.IdempotencyKey, tx)
	}

	s.logger.Info("transaction recorded",
		zap.String("transaction_id", tx.ID),
		zap.String("employee_id", tx.EmployeeID),
		zap.String("channel", tx.Type.String()),
		zap.String("amount", tx.Amount.String()),
	)
	return tx, false, nil
}

// ListTransactions returns one page of the filtered history, newest first,
// together with the number of matching records.
func (s *BalancesService) ListTransactions(ctx context.Context, filter domain.TransactionFilter, page, pageSize int) ([]domain.EmployeeTransaction, int) {
	_, span := tracer.Start(ctx, "BalancesService.ListTransactions")
	defer span.End()

	matched := s.FilterTransactions(ctx, filter)
	total := len(matched)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	// Compare page counts first so a huge page cannot overflow the offset.
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	if page-1 >= pages {
		return []domain.EmployeeTransaction{}, total
	}
	start := (page - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}
	return matched[start:end], total
}

// FilterTransactions returns every transaction passing filter.
func (s *BalancesService) FilterTransactions(ctx context.Context, filter domain.TransactionFilter) []domain.EmployeeTransaction {
	_, span := tracer.Start(ctx, "BalancesService.FilterTransactions")
	defer span.End()

	s.mu.Lock()
	all := s.store.Transactions()
	s.mu.Unlock()

	return filterTransactions(all, filter)
}

func filterTransactions(all []domain.EmployeeTransaction, filter domain.TransactionFilter) []domain.EmployeeTransaction {
	matched := make([]domain.EmployeeTransaction, 0, len(all))
	for _, tx := range all {
		if filter.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}
