// Package service provides the business logic layer (use cases).
// BalancesService is the single entry point for every ledger mutation: the
// accounting rules, the transaction recorder and write-through persistence
// all run under one lock, so each public operation is validate, commit,
// recompute and save with nothing interleaved.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/infra/observability"
	"github.com/boddenberg/daily-balances-go/internal/ledger"
	"github.com/boddenberg/daily-balances-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/balances")

// BalancesService orchestrates the ledger store and its durable slot.
type BalancesService struct {
	mu sync.Mutex

	store   *ledger.Store
	slot    port.Slot
	idem    port.Cache[domain.EmployeeTransaction]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time

	// persistence status, guarded by mu
	dirty       bool
	lastSaveErr error
	lastSavedAt time.Time
}

// Option configures a BalancesService.
type Option func(*BalancesService)

// WithClock overrides the clock used to stamp transaction dates.
func WithClock(now func() time.Time) Option {
	return func(s *BalancesService) { s.now = now }
}

// WithIdempotencyCache enables replay of transaction submissions that carry
// an idempotency key.
func WithIdempotencyCache(c port.Cache[domain.EmployeeTransaction]) Option {
	return func(s *BalancesService) { s.idem = c }
}

// NewBalancesService creates a new balances service over store, persisting
// to slot after every accepted mutation.
func NewBalancesService(store *ledger.Store, slot port.Slot, metrics *observability.Metrics, logger *zap.Logger, opts ...Option) *BalancesService {
	s := &BalancesService{
		store:   store,
		slot:    slot,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commitLocked runs after every accepted mutation: totals are rebuilt from
// the full collection, gauges are refreshed and the state is written
// through. A failed save is logged and retried later; it never undoes the
// in-memory change.
func (s *BalancesService) commitLocked(ctx context.Context, op string) domain.Totals {
	totals := s.store.Recalculate()
	s.metrics.ObserveBalances(s.store.OpeningBalance(), totals)
	if err := s.saveLocked(ctx); err != nil {
		s.logger.Warn("state kept in memory, save will be retried",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
	return totals
}

func (s *BalancesService) observe(op string, start time.Time) {
	s.metrics.RecordOperationDuration(op, time.Since(start))
}
