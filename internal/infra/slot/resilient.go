package slot

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/infra/resilience"
	"github.com/boddenberg/daily-balances-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("slot")

// Resilient guards a slot with a per-call timeout, retries with backoff and
// a circuit breaker. A missing record is an answer, not a failure: it is
// neither retried nor counted against the breaker.
type Resilient struct {
	inner   port.Slot
	name    string
	cb      *gobreaker.CircuitBreaker
	cfg     resilience.Config
	timeout time.Duration
	logger  *zap.Logger
}

// NewResilient wraps inner. A zero timeout disables the per-call deadline.
func NewResilient(inner port.Slot, name string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, timeout time.Duration, logger *zap.Logger) *Resilient {
	return &Resilient{inner: inner, name: name, cb: cb, cfg: cfg, timeout: timeout, logger: logger}
}

func (r *Resilient) Read(ctx context.Context) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Slot.Read")
	defer span.End()
	span.SetAttributes(attribute.String("slot.name", r.name))

	var data []byte
	missing := false
	err := resilience.RetryWithBackoff(ctx, r.cfg, func() error {
		_, err := r.cb.Execute(func() (interface{}, error) {
			callCtx, cancel := r.callContext(ctx)
			defer cancel()

			b, err := r.inner.Read(callCtx)
			if errors.Is(err, domain.ErrNoState) {
				missing = true
				return nil, nil
			}
			data = b
			return nil, err
		})
		return r.classify("read", err)
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, domain.ErrNoState
	}
	return data, nil
}

func (r *Resilient) Write(ctx context.Context, data []byte) error {
	ctx, span := tracer.Start(ctx, "Slot.Write")
	defer span.End()
	span.SetAttributes(attribute.String("slot.name", r.name), attribute.Int("slot.bytes", len(data)))

	return resilience.RetryWithBackoff(ctx, r.cfg, func() error {
		_, err := r.cb.Execute(func() (interface{}, error) {
			callCtx, cancel := r.callContext(ctx)
			defer cancel()
			return nil, r.inner.Write(callCtx, data)
		})
		return r.classify("write", err)
	})
}

// Ping delegates to the inner slot when it supports health checks.
func (r *Resilient) Ping(ctx context.Context) error {
	if r.cb.State() == gobreaker.StateOpen {
		return &domain.ErrCircuitOpen{Service: r.name}
	}
	if p, ok := r.inner.(port.Pinger); ok {
		callCtx, cancel := r.callContext(ctx)
		defer cancel()
		return p.Ping(callCtx)
	}
	return nil
}

func (r *Resilient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Resilient) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &resilience.Permanent{Err: &domain.ErrCircuitOpen{Service: r.name}}
	}
	r.logger.Warn("slot operation failed",
		zap.String("slot", r.name),
		zap.String("op", op),
		zap.Error(err),
	)
	return err
}

var (
	_ port.Slot   = (*Resilient)(nil)
	_ port.Pinger = (*Resilient)(nil)
)
