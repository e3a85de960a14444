package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterInitialStock(t *testing.T) {
	f := newFixture(t, false)
	min := dec("10")

	out, err := f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("8"), MinStock: &min})
	require.NoError(t, err)
	assert.True(t, out.Record.LowStock)

	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p2, WarehouseID: w1, Quantity: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p2, WarehouseID: "w9", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// sin cantidad no hay movimiento, pero el registro existe
	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p2, WarehouseID: w2})
	require.NoError(t, err)
	all, err := f.repos.Movements.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	f.consistent(t)
}

func TestGetOrCreate_Idempotente(t *testing.T) {
	f := newFixture(t, false)
	key := entity.InventoryKey{PresentationID: p1, WarehouseID: w1}

	a, err := f.stock.GetOrCreate(ctx, key)
	require.NoError(t, err)
	b, err := f.stock.GetOrCreate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.Quantity.IsZero())

	list, err := f.stock.GetInventory(ctx, dto.InventoryQuery{PresentationID: p1})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	_, err = f.stock.GetOrCreate(ctx, entity.InventoryKey{PresentationID: p1, WarehouseID: w1, LotID: "nada"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnitAdjustments(t *testing.T) {
	f := newFixture(t, false)
	req := dto.UnitAdjustmentRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("12.5")}

	out, err := f.stock.CreditUnits(ctx, actor, "", req)
	require.NoError(t, err)
	assert.True(t, dec("12.5").Equal(out.Record.Quantity))

	req.Quantity = dec("2.5")
	out, err = f.stock.DebitUnits(ctx, actor, entity.OperationSale, req)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(out.Record.Quantity))

	req.Quantity = dec("10.0001")
	_, err = f.stock.DebitUnits(ctx, actor, entity.OperationSale, req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.stock.DebitUnits(ctx, actor, "regalo", req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.stock.DebitUnits(ctx, actor, "", dto.UnitAdjustmentRequest{PresentationID: p2, WarehouseID: w1, Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "débito sobre una clave sin registro")

	sales, err := f.stock.GetMovements(ctx, dto.MovementQuery{OperationKind: entity.OperationSale})
	require.NoError(t, err)
	assert.Equal(t, 1, sales.Page.Total)
	f.consistent(t)
}

func TestGetInventory_BajoStock(t *testing.T) {
	f := newFixture(t, false)
	min := dec("5")
	_, err := f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("5"), MinStock: &min})
	require.NoError(t, err)
	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p2, WarehouseID: w1, Quantity: dec("50"), MinStock: &min})
	require.NoError(t, err)

	low, err := f.stock.GetInventory(ctx, dto.InventoryQuery{LowStock: true})
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, p1, low.Items[0].PresentationID)
	assert.True(t, low.Items[0].LowStock)

	all, err := f.stock.GetInventory(ctx, dto.InventoryQuery{WarehouseID: w1})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)
}

func TestGetMovements_Filtros(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")
	f.seed(t, p2, w2, "3")

	today := time.Now().UTC().Format("2006-01-02")
	got, err := f.stock.GetMovements(ctx, dto.MovementQuery{From: today, To: today})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Page.Total, "la fecha final es inclusiva")

	got, err = f.stock.GetMovements(ctx, dto.MovementQuery{WarehouseID: w2, Direction: entity.DirectionEntry})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, p2, got.Items[0].PresentationID)

	got, err = f.stock.GetMovements(ctx, dto.MovementQuery{To: "2000-01-01"})
	require.NoError(t, err)
	assert.Zero(t, got.Page.Total)

	cases := []dto.MovementQuery{
		{Direction: "lateral"},
		{OperationKind: "regalo"},
		{From: "15/10/2026"},
		{To: "ayer"},
		{From: "2026-10-15", To: "2026-10-01"},
	}
	for _, q := range cases {
		_, err := f.stock.GetMovements(ctx, q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", q)
	}
}

func TestReconcile_DetectaDeriva(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")
	f.consistent(t)

	// una escritura directa sobre la fila sin movimiento rompe el libro
	rec, err := f.repos.Inventory.Get(ctx, entity.InventoryKey{PresentationID: p1, WarehouseID: w1})
	require.NoError(t, err)
	rec.Quantity = dec("49")
	require.NoError(t, f.repos.Inventory.UpdateQuantity(ctx, rec))

	rep, err := f.stock.Reconcile(ctx)
	require.NoError(t, err)
	assert.False(t, rep.Consistent)
	require.Len(t, rep.Drifts, 1)
	assert.True(t, dec("49").Equal(rep.Drifts[0].Materialized))
	assert.True(t, dec("50").Equal(rep.Drifts[0].Replayed))
}

func TestCreditUnits_ConcurrenteNoPierdeEscrituras(t *testing.T) {
	f := newFixture(t, false)
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.stock.CreditUnits(ctx, actor, "", dto.UnitAdjustmentRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("2")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.True(t, dec("50").Equal(f.units(t, p1, w1, "")))
	f.consistent(t)
}

// countingRunner distingue las transacciones de solo lectura de las normales.
type countingRunner struct {
	store    *memory.Store
	readOnly int
	writes   int
}

func (r *countingRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	r.writes++
	return r.store.Run(ctx, fn)
}

func (r *countingRunner) RunReadOnly(ctx context.Context, fn func(repos inventory.Repos) error) error {
	r.readOnly++
	return r.store.RunReadOnly(ctx, fn)
}

func TestReconcile_LeeEnUnaSolaInstantanea(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")
	runner := &countingRunner{store: f.store}
	uc := inventory.NewStockUseCase(runner, f.repos, logger.Nop(), nil, decimal.Zero)

	rep, err := uc.Reconcile(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)
	assert.Equal(t, 1, runner.readOnly)
	assert.Equal(t, 0, runner.writes)
}
