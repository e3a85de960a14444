package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción (o al pool, fuera de ella).
type Repos struct {
	Lots          repository.LotRepository
	Inventory     repository.InventoryRepository
	Movements     repository.MovementRepository
	Recipes       repository.RecipeRepository
	Presentations repository.PresentationRepository
	Products      repository.ProductRepository
	Warehouses    repository.WarehouseRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para
// ensamblaje y transferencias.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}

// ReadOnlyRunner lo implementan los runners que abren transacciones de solo lectura con
// una única instantánea para todas las consultas.
type ReadOnlyRunner interface {
	RunReadOnly(ctx context.Context, fn func(repos Repos) error) error
}

// RunReadOnly ejecuta fn en una transacción de solo lectura si el runner la ofrece y en una
// transacción normal si no.
func RunReadOnly(ctx context.Context, r TxRunner, fn func(repos Repos) error) error {
	if ro, ok := r.(ReadOnlyRunner); ok {
		return ro.RunReadOnly(ctx, fn)
	}
	return r.Run(ctx, fn)
}

// Metrics puerto de observabilidad de las operaciones del libro.
type Metrics interface {
	ObserveOperation(operation string, started time.Time, err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, time.Time, error) {}

// NopMetrics descarta las observaciones.
func NopMetrics() Metrics { return nopMetrics{} }
