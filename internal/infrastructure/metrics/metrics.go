// Package metrics expone métricas Prometheus de las operaciones del libro.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ inventory.Metrics = (*Ledger)(nil)

// Ledger colectores de operaciones, duraciones y reintentos de transacción.
type Ledger struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	txRetries  prometheus.Counter
}

// NewLedger crea y registra los colectores en reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	m := &Ledger{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "produccion",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Operaciones del libro por tipo y resultado.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "produccion",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del libro.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		txRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "produccion",
			Subsystem: "ledger",
			Name:      "tx_retries_total",
			Help:      "Transacciones repetidas por serialización o deadlock.",
		}),
	}
	reg.MustRegister(m.operations, m.duration, m.txRetries)
	return m
}

// ObserveOperation cuenta la operación con su resultado y registra su duración.
func (m *Ledger) ObserveOperation(operation string, started time.Time, err error) {
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// TxRetry cuenta un reintento; firma compatible con postgres.WithRetryHook.
func (m *Ledger) TxRetry(int, error) {
	m.txRetries.Inc()
}

// Outcome clasifica un error de dominio en una etiqueta de baja cardinalidad.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrRecipeNotFound), errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrIncompleteLotSelection), errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrTransactionFailure):
		return "transaction_failure"
	default:
		return "error"
	}
}

// NewRegistry registro con los colectores de proceso y runtime de Go.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler expone el registro en formato de texto Prometheus.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
