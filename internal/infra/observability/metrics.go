package observability

import (
	"time"

	"github.com/boddenberg/daily-balances-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the balances service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	rejections        *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	transactionAmount *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	openingBalance    *prometheus.GaugeVec
	salesByType       *prometheus.GaugeVec
	remainingBalance  *prometheus.GaugeVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "balances_operation_duration_seconds",
				Help:    "Duration of ledger operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_rejections_total",
				Help: "Mutations rejected by validation, by reason and channel.",
			},
			[]string{"reason", "channel"},
		),
		persistenceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_persistence_errors_total",
				Help: "Durable slot failures.",
			},
			[]string{"op"},
		),
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_transactions_total",
				Help: "Transactions recorded.",
			},
			[]string{"channel"},
		),
		transactionAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_transaction_amount_total",
				Help: "Sum of recorded transaction amounts.",
			},
			[]string{"channel"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balances_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		openingBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "balances_opening",
				Help: "Opening balance of the day per credit channel.",
			},
			[]string{"channel"},
		),
		salesByType: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "balances_sales",
				Help: "Total sales of the day per channel.",
			},
			[]string{"channel"},
		),
		remainingBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "balances_remaining",
				Help: "Remaining balance per credit channel.",
			},
			[]string{"channel"},
		),
	}
}

// RecordOperationDuration records the duration of a ledger operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRejection counts a rejected mutation. channel may be empty.
func (m *Metrics) IncrRejection(reason string, channel domain.Channel) {
	m.rejections.WithLabelValues(reason, string(channel)).Inc()
}

// IncrPersistenceError counts a slot read or write failure.
func (m *Metrics) IncrPersistenceError(op string) {
	m.persistenceErrors.WithLabelValues(op).Inc()
}

// RecordTransaction counts an accepted transaction and its amount.
func (m *Metrics) RecordTransaction(tx domain.EmployeeTransaction) {
	m.transactions.WithLabelValues(string(tx.Type)).Inc()
	m.transactionAmount.WithLabelValues(string(tx.Type)).Add(tx.Amount.InexactFloat64())
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ObserveBalances publishes the current opening and derived totals.
func (m *Metrics) ObserveBalances(opening domain.OpeningBalance, totals domain.Totals) {
	for _, c := range domain.CreditChannels {
		ceiling, _ := opening.Ceiling(c)
		m.openingBalance.WithLabelValues(string(c)).Set(ceiling.InexactFloat64())
	}
	m.remainingBalance.WithLabelValues(string(domain.ChannelA)).Set(totals.RemainingBalances.ChannelA.InexactFloat64())
	m.remainingBalance.WithLabelValues(string(domain.ChannelB)).Set(totals.RemainingBalances.ChannelB.InexactFloat64())
	for _, c := range domain.Channels {
		m.salesByType.WithLabelValues(string(c)).Set(totals.SalesByType.Amount(c).InexactFloat64())
	}
}

// PersistenceErrors returns the cumulative number of slot failures for op.
func (m *Metrics) PersistenceErrors(op string) float64 {
	return getCounterValue(m.persistenceErrors, op)
}

// Rejections returns the cumulative number of rejections for reason/channel.
func (m *Metrics) Rejections(reason string, channel domain.Channel) float64 {
	return getCounterValue(m.rejections, reason, string(channel))
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
