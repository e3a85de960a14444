package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	appinv "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	actor       = "operario-1"
	warehouseID = "w1"
	productID   = "carbon"
	rawID       = "carbon-granel"
	finishedID  = "briqueta-1.2kg"
	bagID       = "bolsa"
	sackID      = "saco-25kg"
)

var ctx = context.Background()

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	store    *memory.Store
	repos    appinv.Repos
	lots     *appinv.LotUseCase
	stock    *appinv.StockUseCase
	recipes  *production.RecipeUseCase
	assembly *production.AssemblyUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	now := time.Now().UTC()

	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: warehouseID, Name: "Planta", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: productID, Name: "Carbón", Active: true}))
	for _, p := range []entity.Presentation{
		{ID: rawID, ProductID: productID, Name: "Carbón a granel", Kind: entity.PresentationKindRaw, WeightPerUnit: dec("1")},
		{ID: finishedID, ProductID: productID, Name: "Briqueta 1.2 kg", Kind: entity.PresentationKindBriquette, WeightPerUnit: dec("1.2")},
		{ID: sackID, ProductID: productID, Name: "Saco 25 kg", Kind: entity.PresentationKindRetail, WeightPerUnit: dec("25")},
		{ID: bagID, ProductID: productID, Name: "Bolsa", Kind: entity.PresentationKindInput, WeightPerUnit: decimal.Zero},
	} {
		p := p
		p.Active = true
		require.NoError(t, repos.Presentations.Create(ctx, &p))
	}

	log := logger.Nop()
	return &fixture{
		store:    store,
		repos:    repos,
		lots:     appinv.NewLotUseCase(store, repos, log, nil),
		stock:    appinv.NewStockUseCase(store, repos, log, nil, decimal.Zero),
		recipes:  production.NewRecipeUseCase(store, repos, log),
		assembly: production.NewAssemblyUseCase(store, log, nil),
	}
}

func (f *fixture) lot(t *testing.T, kg string) string {
	t.Helper()
	l, err := f.lots.CreateLot(ctx, actor, dto.CreateLotRequest{ProductID: productID, InitialWeight: dec(kg)})
	require.NoError(t, err)
	return l.ID
}

// briquetteRecipe 1.5 kg de carbón a granel por unidad, opcionalmente con una bolsa por unidad.
func (f *fixture) briquetteRecipe(t *testing.T, withBag bool) *dto.RecipeResponse {
	t.Helper()
	in := dto.DefineRecipeRequest{
		PresentationID: finishedID,
		Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: rawID, RequiredQuantity: dec("1.5"), ConsumptionKind: entity.ConsumptionRawMaterial},
		},
	}
	if withBag {
		in.Components = append(in.Components, dto.RecipeComponentRequest{
			ComponentPresentationID: bagID, RequiredQuantity: dec("1"), ConsumptionKind: entity.ConsumptionInput,
		})
	}
	r, err := f.recipes.DefineRecipe(ctx, in)
	require.NoError(t, err)
	return r
}

func (f *fixture) lotWeight(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	l, err := f.repos.Lots.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return l.RemainingWeight
}

func (f *fixture) units(t *testing.T, key entity.InventoryKey) decimal.Decimal {
	t.Helper()
	rec, err := f.repos.Inventory.Get(ctx, key)
	require.NoError(t, err)
	if rec == nil {
		return decimal.Zero
	}
	return rec.Quantity
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	all, err := f.repos.Movements.All(ctx)
	require.NoError(t, err)
	return len(all)
}
