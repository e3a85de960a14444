package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var keyP1W1 = entity.InventoryKey{PresentationID: "p1", WarehouseID: "w1"}

// ─────────────────────────────────────────────────────────────────────────────
// Transacciones
// ─────────────────────────────────────────────────────────────────────────────

func TestRun_ErrorDescartaTodosLosCambios(t *testing.T) {
	s := memory.New()
	boom := errors.New("boom")

	err := s.Run(ctx, func(repos inventory.Repos) error {
		rec, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, decimal.Zero)
		require.NoError(t, err)
		rec.Quantity = dec("10")
		require.NoError(t, repos.Inventory.UpdateQuantity(ctx, rec))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rec, err := s.Repos().Inventory.Get(ctx, keyP1W1)
	require.NoError(t, err)
	assert.Nil(t, rec, "el registro creado dentro de la tx fallida no debe existir")
}

func TestRun_CommitHookFallidoNoPublica(t *testing.T) {
	s := memory.New(memory.WithCommitHook(func(memory.Snapshot) error { return errors.New("disco lleno") }))

	err := s.Run(ctx, func(repos inventory.Repos) error {
		_, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, decimal.Zero)
		return err
	})
	require.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.Empty(t, s.Snapshot().Inventory)
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.New()
	c, cancel := context.WithCancel(ctx)
	cancel()

	called := false
	err := s.Run(c, func(inventory.Repos) error { called = true; return nil })
	require.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.False(t, called)
}

func TestSnapshotLoad_RestauraEstado(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Repos().Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", Name: "Principal"}))
	_, err := s.Repos().Inventory.GetOrCreateForUpdate(ctx, keyP1W1, dec("5"))
	require.NoError(t, err)

	other := memory.New()
	other.Load(s.Snapshot())

	w, err := other.Repos().Warehouses.GetByID(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, w)
	rec, err := other.Repos().Inventory.Get(ctx, keyP1W1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, dec("5").Equal(rec.MinStock))
}

// ─────────────────────────────────────────────────────────────────────────────
// Inventario
// ─────────────────────────────────────────────────────────────────────────────

func TestGetOrCreate_Idempotente(t *testing.T) {
	repos := memory.New().Repos()

	a, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, decimal.Zero)
	require.NoError(t, err)
	b, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, dec("99"))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.MinStock.IsZero(), "la segunda llamada no recrea el registro")
	all, err := repos.Inventory.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInventoryCreate_ClaveDuplicadaEsConflict(t *testing.T) {
	repos := memory.New().Repos()
	rec := &entity.InventoryRecord{ID: "r1", PresentationID: "p1", WarehouseID: "w1"}
	require.NoError(t, repos.Inventory.Create(ctx, rec))

	err := repos.Inventory.Create(ctx, &entity.InventoryRecord{ID: "r2", PresentationID: "p1", WarehouseID: "w1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// misma presentación y almacén pero con lote: clave distinta
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryRecord{ID: "r3", PresentationID: "p1", WarehouseID: "w1", LotID: "l1"}))
}

func TestInventoryUpdate_RechazaNegativo(t *testing.T) {
	repos := memory.New().Repos()
	rec, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, decimal.Zero)
	require.NoError(t, err)

	rec.Quantity = dec("-1")
	assert.Error(t, repos.Inventory.UpdateQuantity(ctx, rec))
}

func TestInventoryList_FiltrosSinLoteYStockBajo(t *testing.T) {
	repos := memory.New().Repos()
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryRecord{ID: "a", PresentationID: "p1", WarehouseID: "w1", Quantity: dec("2"), MinStock: dec("5")}))
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryRecord{ID: "b", PresentationID: "p1", WarehouseID: "w1", LotID: "l1", Quantity: dec("50"), MinStock: dec("5")}))
	require.NoError(t, repos.Inventory.Create(ctx, &entity.InventoryRecord{ID: "c", PresentationID: "p2", WarehouseID: "w2", Quantity: dec("5"), MinStock: dec("5")}))

	list, total, err := repos.Inventory.List(ctx, repository.InventoryFilter{LotID: repository.NoLot})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = repos.Inventory.List(ctx, repository.InventoryFilter{LowStock: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, r := range list {
		assert.True(t, r.IsLow())
	}

	list, total, err = repos.Inventory.List(ctx, repository.InventoryFilter{PresentationID: "p1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Movimientos y recetas
// ─────────────────────────────────────────────────────────────────────────────

func TestMovements_ValidaYFiltra(t *testing.T) {
	repos := memory.New().Repos()
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.Error(t, repos.Movements.Create(ctx, &entity.Movement{
		Direction: entity.DirectionEntry, LotID: "l1", Quantity: decimal.Zero, OperationKind: entity.OperationAdjustment,
	}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{
		CorrelationID: "c1", Direction: entity.DirectionEntry, LotID: "l1", Quantity: dec("100"),
		OperationKind: entity.OperationAdjustment, OccurredAt: day1,
	}))
	require.NoError(t, repos.Movements.Create(ctx, &entity.Movement{
		CorrelationID: "c2", Direction: entity.DirectionExit, LotID: "l1", Quantity: dec("10"),
		OperationKind: entity.OperationAssembly, OccurredAt: day2,
	}))

	list, total, err := repos.Movements.List(ctx, repository.MovementFilter{LotID: "l1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "c2", list[0].CorrelationID, "más recientes primero")

	to := day2
	list, _, err = repos.Movements.List(ctx, repository.MovementFilter{To: &to})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c1", list[0].CorrelationID)

	all, err := repos.Movements.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", all[0].CorrelationID, "All conserva el orden de inserción")
}

func TestRecipes_ConflictYGrafo(t *testing.T) {
	repos := memory.New().Repos()
	r := &entity.Recipe{ID: "r1", PresentationID: "fin", Components: []entity.RecipeComponent{
		{ID: "c1", ComponentPresentationID: "raw", RequiredQuantity: dec("1.5"), ConsumptionKind: entity.ConsumptionRawMaterial},
		{ID: "c2", ComponentPresentationID: "bag", RequiredQuantity: dec("1"), ConsumptionKind: entity.ConsumptionInput},
	}}
	require.NoError(t, repos.Recipes.Create(ctx, r))

	err := repos.Recipes.Create(ctx, &entity.Recipe{ID: "r2", PresentationID: "fin"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repos.Recipes.GetByPresentation(ctx, "fin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)
	assert.Len(t, got.Components, 2)

	g, err := repos.Recipes.Graph(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"raw", "bag"}, g["fin"])
}

func TestRunReadOnly_InstantaneaFijaYSinEscrituras(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Run(ctx, func(repos inventory.Repos) error {
		rec, err := repos.Inventory.GetOrCreateForUpdate(ctx, keyP1W1, decimal.Zero)
		if err != nil {
			return err
		}
		rec.Quantity = dec("10")
		return repos.Inventory.UpdateQuantity(ctx, rec)
	}))

	err := s.RunReadOnly(ctx, func(repos inventory.Repos) error {
		// una transacción confirmada a mitad de la lectura no se ve
		require.NoError(t, s.Run(ctx, func(w inventory.Repos) error {
			rec, err := w.Inventory.GetForUpdate(ctx, keyP1W1)
			if err != nil {
				return err
			}
			rec.Quantity = dec("4")
			return w.Inventory.UpdateQuantity(ctx, rec)
		}))
		rec, err := repos.Inventory.Get(ctx, keyP1W1)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, dec("10").Equal(rec.Quantity))

		rec.Quantity = dec("1")
		assert.ErrorIs(t, repos.Inventory.UpdateQuantity(ctx, rec), domain.ErrTransactionFailure)
		return nil
	})
	require.NoError(t, err)

	rec, err := s.Repos().Inventory.Get(ctx, keyP1W1)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(rec.Quantity))
}
