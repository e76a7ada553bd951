package service

import (
	"context"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Balances is the opening balance together with its derived totals.
type Balances struct {
	OpeningBalance domain.OpeningBalance
	Totals         domain.Totals
}

// ============================================================
// Opening balance & rollover
// ============================================================

// SetOpeningBalance replaces the opening balance wholesale. It is not
// checked against current sales: a ceiling below them shows up as a
// negative remaining balance.
func (s *BalancesService) SetOpeningBalance(ctx context.Context, b domain.OpeningBalance) (Balances, error) {
	ctx, span := tracer.Start(ctx, "BalancesService.SetOpeningBalance")
	defer span.End()
	defer s.observe("set_opening_balance", time.Now())

	for _, c := range domain.CreditChannels {
		amount, _ := b.Ceiling(c)
		if amount.IsNegative() {
			s.metrics.IncrRejection("negative_amount", c)
			return Balances{}, &domain.ErrValidation{Field: string(c), Message: "opening balance must not be negative"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetOpeningBalance(b)
	totals := s.commitLocked(ctx, "set_opening_balance")

	s.logger.Info("opening balance set",
		zap.String("channelA", b.ChannelA.String()),
		zap.String("channelB", b.ChannelB.String()),
	)
	return Balances{OpeningBalance: b, Totals: totals}, nil
}

// SetNextDayOpeningBalance rolls the day over: each credit channel opens
// with its current remaining balance. Sales entries and transactions are
// kept unless resetSales is set, in which case every entry is zeroed.
func (s *BalancesService) SetNextDayOpeningBalance(ctx context.Context, resetSales bool) (Balances, error) {
	ctx, span := tracer.Start(ctx, "BalancesService.SetNextDayOpeningBalance")
	defer span.End()
	span.SetAttributes(attribute.Bool("reset_sales", resetSales))
	defer s.observe("rollover", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.store.Recalculate().RemainingBalances
	next := domain.OpeningBalance{ChannelA: remaining.ChannelA, ChannelB: remaining.ChannelB}
	s.store.SetOpeningBalance(next)

	if resetSales {
		entries := s.store.SalesEntries()
		for i := range entries {
			entries[i] = domain.NewSalesEntry(entries[i].EmployeeID)
		}
		s.store.ReplaceSalesEntries(entries)
	}

	totals := s.commitLocked(ctx, "rollover")

	s.logger.Info("day rolled over",
		zap.String("channelA", next.ChannelA.String()),
		zap.String("channelB", next.ChannelB.String()),
		zap.Bool("reset_sales", resetSales),
	)
	return Balances{OpeningBalance: next, Totals: totals}, nil
}

// ============================================================
// Sales entries
// ============================================================

// UpdateSalesEntry sets one channel of one employee's entry to value.
// Negative values are rejected on every channel. On a credit channel the
// new channel total may not exceed the opening balance; a rejected update
// leaves the ledger untouched.
func (s *BalancesService) UpdateSalesEntry(ctx context.Context, employeeID string, channel domain.Channel, value decimal.Decimal) (domain.SalesEntry, error) {
	ctx, span := tracer.Start(ctx, "BalancesService.UpdateSalesEntry")
	defer span.End()
	span.SetAttributes(
		attribute.String("employee.id", employeeID),
		attribute.String("channel", channel.String()),
		attribute.String("value", value.String()),
	)
	defer s.observe("update_sales_entry", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.applySalesValueLocked(employeeID, channel, value)
	if err != nil {
		return domain.SalesEntry{}, err
	}
	s.commitLocked(ctx, "update_sales_entry")
	return entry, nil
}

// applySalesValueLocked validates and stores a single channel value. No
// state changes unless it returns a nil error.
func (s *BalancesService) applySalesValueLocked(employeeID string, channel domain.Channel, value decimal.Decimal) (domain.SalesEntry, error) {
	if !channel.Valid() {
		return domain.SalesEntry{}, &domain.ErrValidation{Field: "channel", Message: "unknown channel " + channel.String()}
	}
	if value.IsNegative() {
		s.metrics.IncrRejection("negative_amount", channel)
		return domain.SalesEntry{}, &domain.ErrValidation{Field: channel.String(), Message: "amount must not be negative"}
	}

	entry, ok := s.store.SalesEntry(employeeID)
	if !ok {
		return domain.SalesEntry{}, &domain.ErrNotFound{Resource: "employee", ID: employeeID}
	}

	if ceiling, capped := s.store.OpeningBalance().Ceiling(channel); capped {
		total := s.store.Totals().SalesByType.Amount(channel)
		requested := total.Sub(entry.Amount(channel)).Add(value)
		if requested.GreaterThan(ceiling) {
			s.metrics.IncrRejection("overdraft", channel)
			s.logger.Warn("overdraft rejected",
				zap.String("employee_id", employeeID),
				zap.String("channel", channel.String()),
				zap.String("opening", ceiling.String()),
				zap.String("requested", requested.String()),
			)
			return domain.SalesEntry{}, &domain.ErrOverdraft{Channel: channel, Opening: ceiling, Requested: requested}
		}
	}

	updated := entry.WithAmount(channel, value)
	s.store.PutSalesEntry(updated)
	return updated, nil
}

// SalesEntries returns every entry in employee order.
func (s *BalancesService) SalesEntries(ctx context.Context) []domain.SalesEntry {
	_, span := tracer.Start(ctx, "BalancesService.SalesEntries")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SalesEntries()
}

// ============================================================
// Totals & read models
// ============================================================

// CalculateTotals recomputes the derived values from the full ledger.
// Calling it repeatedly yields identical results.
func (s *BalancesService) CalculateTotals(ctx context.Context) domain.Totals {
	_, span := tracer.Start(ctx, "BalancesService.CalculateTotals")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Recalculate()
}

// Balances returns the opening balance and current totals.
func (s *BalancesService) Balances(ctx context.Context) Balances {
	_, span := tracer.Start(ctx, "BalancesService.Balances")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Balances{OpeningBalance: s.store.OpeningBalance(), Totals: s.store.Totals()}
}

// Summary builds the dashboard view of the day.
func (s *BalancesService) Summary(ctx context.Context) domain.DailySummary {
	_, span := tracer.Start(ctx, "BalancesService.Summary")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	opening := s.store.OpeningBalance()
	totals := s.store.Totals()
	summary := domain.DailySummary{
		OpeningBalance:    opening,
		SalesByType:       totals.SalesByType,
		RemainingBalances: totals.RemainingBalances,
		EmployeeCount:     len(s.store.Employees()),
		TransactionCount:  len(s.store.Transactions()),
		OverdrawnChannels: []domain.Channel{},
	}
	if totals.RemainingBalances.ChannelA.IsNegative() {
		summary.OverdrawnChannels = append(summary.OverdrawnChannels, domain.ChannelA)
	}
	if totals.RemainingBalances.ChannelB.IsNegative() {
		summary.OverdrawnChannels = append(summary.OverdrawnChannels, domain.ChannelB)
	}
	return summary
}
