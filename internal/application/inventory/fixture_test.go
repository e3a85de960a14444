package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	actor     = "bodeguero-1"
	w1        = "w1"
	w2        = "w2"
	productID = "carbon"
	p1        = "briqueta-1.2kg"
	p2        = "saco-25kg"
)

var ctx = context.Background()

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store     *memory.Store
	repos     inventory.Repos
	lots      *inventory.LotUseCase
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
}

func newFixture(t *testing.T, lotAware bool) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	now := time.Now().UTC()

	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: w1, Name: "Planta", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: w2, Name: "Bodega Norte", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: productID, Name: "Carbón", Active: true}))
	require.NoError(t, repos.Presentations.Create(ctx, &entity.Presentation{
		ID: p1, ProductID: productID, Name: "Briqueta 1.2 kg", Kind: entity.PresentationKindBriquette, WeightPerUnit: dec("1.2"), Active: true,
	}))
	require.NoError(t, repos.Presentations.Create(ctx, &entity.Presentation{
		ID: p2, ProductID: productID, Name: "Saco 25 kg", Kind: entity.PresentationKindRetail, WeightPerUnit: dec("25"), Active: true,
	}))

	log := logger.Nop()
	return &fixture{
		store:     store,
		repos:     repos,
		lots:      inventory.NewLotUseCase(store, repos, log, nil),
		stock:     inventory.NewStockUseCase(store, repos, log, nil, decimal.Zero),
		transfers: inventory.NewTransferUseCase(store, log, nil, lotAware),
	}
}

func (f *fixture) seed(t *testing.T, presentation, warehouse, qty string) {
	t.Helper()
	_, err := f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: presentation, WarehouseID: warehouse, Quantity: dec(qty)})
	require.NoError(t, err)
}

func (f *fixture) units(t *testing.T, presentation, warehouse, lot string) decimal.Decimal {
	t.Helper()
	rec, err := f.repos.Inventory.Get(ctx, entity.InventoryKey{PresentationID: presentation, WarehouseID: warehouse, LotID: lot})
	require.NoError(t, err)
	if rec == nil {
		return decimal.Zero
	}
	return rec.Quantity
}

func (f *fixture) consistent(t *testing.T) {
	t.Helper()
	rep, err := f.stock.Reconcile(ctx)
	require.NoError(t, err)
	require.True(t, rep.Consistent, "%+v", rep.Drifts)
}
