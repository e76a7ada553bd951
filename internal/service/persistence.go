package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/interchange"
	"github.com/boddenberg/daily-balances-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ============================================================
// Durable slot
// ============================================================

// Load restores the ledger from the slot. An empty slot starts a fresh
// ledger (the seed data when seed is set). An unreadable or malformed
// record also starts a fresh ledger, but the failure is returned as an
// *domain.ErrPersistence so the caller can report it.
func (s *BalancesService) Load(ctx context.Context, seed bool) error {
	ctx, span := tracer.Start(ctx, "BalancesService.Load")
	defer span.End()
	defer s.observe("load", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slot.Read(ctx)
	if errors.Is(err, domain.ErrNoState) {
		if seed {
			s.restoreLocked(SeedState())
			s.logger.Info("no saved state, starting from seed data")
			s.commitLocked(ctx, "seed")
			return nil
		}
		s.restoreLocked(EmptyState())
		s.metrics.ObserveBalances(s.store.OpeningBalance(), s.store.Totals())
		s.logger.Info("no saved state, starting empty")
		return nil
	}
	if err != nil {
		return s.loadFailedLocked(span, "load", err)
	}

	st, err := interchange.Decode(data)
	if err != nil {
		return s.loadFailedLocked(span, "decode", err)
	}

	s.restoreLocked(st)
	s.metrics.ObserveBalances(s.store.OpeningBalance(), s.store.Totals())
	s.logger.Info("state loaded",
		zap.Int("employees", len(st.Employees)),
		zap.Int("transactions", len(st.Transactions)),
	)
	return nil
}

func (s *BalancesService) loadFailedLocked(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	s.metrics.IncrPersistenceError(op)
	s.logger.Error("saved state unusable, starting from defaults", zap.String("op", op), zap.Error(err))
	s.restoreLocked(EmptyState())
	return asPersistence(op, err)
}

// restoreLocked replaces the ledger. Idempotency keys recorded against the
// previous ledger no longer refer to anything and are dropped.
func (s *BalancesService) restoreLocked(st domain.State) {
	s.store.Restore(st)
	if s.idem != nil {
		s.idem.Clear()
	}
}

// saveLocked writes the whole ledger to the slot. On failure the ledger is
// marked dirty for the resync worker.
func (s *BalancesService) saveLocked(ctx context.Context) error {
	data, err := interchange.Encode(s.store.Snapshot())
	if err != nil {
		s.metrics.IncrPersistenceError("encode")
		return asPersistence("encode", err)
	}

	// Saves must outlive a request that is cancelled mid-write.
	if err := s.slot.Write(context.WithoutCancel(ctx), data); err != nil {
		s.dirty = true
		s.lastSaveErr = err
		s.metrics.IncrPersistenceError("save")
		s.logger.Error("save failed", zap.Error(err))
		return asPersistence("save", err)
	}

	s.dirty = false
	s.lastSaveErr = nil
	s.lastSavedAt = s.now()
	return nil
}

// Flush forces a write of the current state and reports its outcome.
func (s *BalancesService) Flush(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "BalancesService.Flush")
	defer span.End()
	defer s.observe("flush", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

// Dirty reports whether the in-memory ledger is ahead of the slot.
func (s *BalancesService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Run retries failed saves every interval until ctx is done.
func (s *BalancesService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("resync worker started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("resync worker stopped")
			return nil
		case <-ticker.C:
			s.resync(ctx)
		}
	}
}

func (s *BalancesService) resync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	if err := s.saveLocked(ctx); err == nil {
		s.logger.Info("pending state saved")
	}
}

// Health reports the state of the durable slot. A reachable slot that is
// behind the in-memory ledger is degraded.
func (s *BalancesService) Health(ctx context.Context) domain.ServiceHealth {
	ctx, span := tracer.Start(ctx, "BalancesService.Health")
	defer span.End()

	h := domain.ServiceHealth{Name: "slot", Status: "healthy"}
	start := time.Now()
	if p, ok := s.slot.(port.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			h.Status = "unhealthy"
			h.Detail = err.Error()
		}
	}
	h.LatencyMs = time.Since(start).Milliseconds()
	h.LastChecked = time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	dirty, lastErr, savedAt := s.dirty, s.lastSaveErr, s.lastSavedAt
	s.mu.Unlock()

	if h.Status == "healthy" && !dirty && !savedAt.IsZero() {
		h.Detail = "last saved " + savedAt.UTC().Format(time.RFC3339)
	}
	if dirty && h.Status == "healthy" {
		h.Status = "degraded"
		h.Detail = "unsaved changes pending"
		if lastErr != nil {
			h.Detail += ": " + lastErr.Error()
		}
	}
	span.SetAttributes(attribute.String("status", h.Status))
	return h
}

// ============================================================
// Interchange files
// ============================================================

// ImportSnapshot replaces the whole ledger with the contents of an
// interchange file. The file is type-checked and decoded in full before the
// live ledger is touched; any failure leaves it as it was.
func (s *BalancesService) ImportSnapshot(ctx context.Context, data []byte, contentType, filename string) (domain.State, error) {
	ctx, span := tracer.Start(ctx, "BalancesService.ImportSnapshot")
	defer span.End()
	span.SetAttributes(attribute.Int("size", len(data)), attribute.String("filename", filename))
	defer s.observe("import", time.Now())

	if err := interchange.CheckImportFile(contentType, filename); err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return domain.State{}, err
	}
	st, err := interchange.ImportSnapshot(data)
	if err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return domain.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.restoreLocked(st)
	s.commitLocked(ctx, "import")

	s.logger.Info("snapshot imported",
		zap.Int("employees", len(st.Employees)),
		zap.Int("transactions", len(st.Transactions)),
	)
	return st, nil
}

// ExportSnapshot renders the full ledger as a pretty-printed JSON file.
func (s *BalancesService) ExportSnapshot(ctx context.Context) ([]byte, error) {
	_, span := tracer.Start(ctx, "BalancesService.ExportSnapshot")
	defer span.End()

	return interchange.ExportSnapshot(s.State())
}

// ExportTransactions renders the filtered history as a table.
func (s *BalancesService) ExportTransactions(ctx context.Context, filter domain.TransactionFilter, f interchange.Format) ([]byte, error) {
	_, span := tracer.Start(ctx, "BalancesService.ExportTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("format", string(f)))

	st := s.State()
	rows := interchange.TransactionRows(st, filterTransactions(st.Transactions, filter))
	return interchange.ExportTabular(rows, interchange.TransactionColumns, f)
}

// ExportSalesEntries renders the sales entries as a table.
func (s *BalancesService) ExportSalesEntries(ctx context.Context, f interchange.Format) ([]byte, error) {
	_, span := tracer.Start(ctx, "BalancesService.ExportSalesEntries")
	defer span.End()
	span.SetAttributes(attribute.String("format", string(f)))

	return interchange.ExportTabular(interchange.SalesEntryRows(s.State()), interchange.SalesEntryColumns, f)
}

// State returns a deep copy of the whole ledger.
func (s *BalancesService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

func asPersistence(op string, err error) error {
	var pe *domain.ErrPersistence
	if errors.As(err, &pe) {
		return err
	}
	return &domain.ErrPersistence{Op: op, Err: err}
}
