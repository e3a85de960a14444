package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_ClasificaErroresDeDominio(t *testing.T) {
	cases := map[string]error{
		"ok":                  nil,
		"insufficient_stock":  domain.Shortfall("lote L1", decimal.NewFromInt(150), decimal.NewFromInt(100)),
		"not_found":           domain.Errorf(domain.ErrRecipeNotFound, "p1"),
		"invalid_input":       domain.Errorf(domain.ErrIncompleteLotSelection, "c1"),
		"conflict":            domain.ErrConflict,
		"transaction_failure": domain.ErrTransactionFailure,
		"error":               errors.New("otro"),
	}
	for want, err := range cases {
		assert.Equal(t, want, metrics.Outcome(err))
	}
}

func TestLedger_CuentaOperacionesYReintentos(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewLedger(reg)

	m.ObserveOperation("transfer", time.Now(), nil)
	m.ObserveOperation("transfer", time.Now(), domain.ErrInsufficientStock)
	m.ObserveOperation("transfer", time.Now(), nil)
	m.TxRetry(1, errors.New("deadlock"))

	expected := `
# HELP produccion_ledger_operations_total Operaciones del libro por tipo y resultado.
# TYPE produccion_ledger_operations_total counter
produccion_ledger_operations_total{operation="transfer",outcome="insufficient_stock"} 1
produccion_ledger_operations_total{operation="transfer",outcome="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "produccion_ledger_operations_total"))

	retries := `
# HELP produccion_ledger_tx_retries_total Transacciones repetidas por serialización o deadlock.
# TYPE produccion_ledger_tx_retries_total counter
produccion_ledger_tx_retries_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(retries), "produccion_ledger_tx_retries_total"))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	reg := metrics.NewRegistry()
	metrics.NewLedger(reg).ObserveOperation("assembly", time.Now(), nil)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "produccion_ledger_operations_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
