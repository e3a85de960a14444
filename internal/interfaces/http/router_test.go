package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	appinv "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiApp levanta el router completo sobre el almacenamiento en memoria con un catálogo mínimo.
func apiApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	ctx := t.Context()
	now := time.Now().UTC()
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", Name: "Planta", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "w2", Name: "Bodega Norte", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "carbon", Name: "Carbón", Active: true}))
	require.NoError(t, repos.Presentations.Create(ctx, &entity.Presentation{ID: "granel", ProductID: "carbon", Name: "Granel", Kind: entity.PresentationKindRaw, WeightPerUnit: decimal.NewFromInt(1), Active: true}))
	require.NoError(t, repos.Presentations.Create(ctx, &entity.Presentation{ID: "briqueta", ProductID: "carbon", Name: "Briqueta", Kind: entity.PresentationKindBriquette, WeightPerUnit: decimal.RequireFromString("1.2"), Active: true}))

	log := logger.Nop()
	app := fiber.New()
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		Lots:      appinv.NewLotUseCase(store, repos, log, nil),
		Stock:     appinv.NewStockUseCase(store, repos, log, nil, decimal.Zero),
		Transfers: appinv.NewTransferUseCase(store, log, nil, false),
		Recipes:   production.NewRecipeUseCase(store, repos, log),
		Assembly:  production.NewAssemblyUseCase(store, log, nil),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any, out any) int {
	t.Helper()
	auth := ""
	if role != "" {
		auth = tokenForRole(t, role)
	}
	return callWithAuth(t, app, method, path, auth, body, out)
}

// callWithAuth como call pero con el header Authorization literal.
func callWithAuth(t *testing.T, app *fiber.App, method, path, auth string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_FlujoDeEnsamblaje(t *testing.T) {
	app := apiApp(t)

	var lot dto.LotResponse
	status := call(t, app, http.MethodPost, "/api/lots", "operario",
		map[string]any{"product_id": "carbon", "code": "L1", "initial_weight": "1000"}, &lot)
	require.Equal(t, http.StatusCreated, status)

	status = call(t, app, http.MethodPost, "/api/recipes", "operario", map[string]any{
		"presentation_id": "briqueta",
		"components": []map[string]any{
			{"component_presentation_id": "granel", "required_quantity": 1.5, "consumption_kind": "raw_material"},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var out dto.AssemblyResponse
	status = call(t, app, http.MethodPost, "/api/production/assemblies", "operario", map[string]any{
		"warehouse_id":        "w1",
		"outputs":             []map[string]any{{"presentation_id": "briqueta", "units": 100}},
		"raw_material_inputs": []map[string]any{{"component_presentation_id": "granel", "lot_id": lot.ID}},
	}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, out.CorrelationID)
	assert.Equal(t, 2, out.Movements)

	var got dto.LotResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/lots/"+lot.ID, "operario", nil, &got))
	assert.True(t, decimal.NewFromInt(850).Equal(got.RemainingWeight))

	var movs dto.MovementListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/movements?correlation_id="+out.CorrelationID, "operario", nil, &movs))
	assert.Equal(t, 2, movs.Page.Total)
	for _, m := range movs.Items {
		assert.Equal(t, testUserID, m.Actor)
	}

	// 850 kg no alcanzan para 600 unidades (900 kg)
	var stockErr dto.StockErrorResponse
	status = call(t, app, http.MethodPost, "/api/production/assemblies", "operario", map[string]any{
		"warehouse_id":        "w1",
		"outputs":             []map[string]any{{"presentation_id": "briqueta", "units": 600}},
		"raw_material_inputs": []map[string]any{{"component_presentation_id": "granel", "lot_id": lot.ID}},
	}, &stockErr)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	assert.Equal(t, "900", stockErr.Requested)
	assert.Equal(t, "850", stockErr.Available)

	var rep dto.ReconciliationResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/inventory/reconciliation", "admin", nil, &rep))
	assert.True(t, rep.Consistent)
}

func TestAPI_MapeoDeErrores(t *testing.T) {
	app := apiApp(t)
	var e dto.ErrorResponse

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/lots", "", nil, nil))

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/inventory/transfers", "operario", map[string]any{
		"source_warehouse_id": "w1", "destination_warehouse_id": "w1",
		"lines": []map[string]any{{"presentation_id": "briqueta", "quantity": 1}},
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/lots/nada", "operario", nil, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/recipes/requirements/briqueta?units=2", "operario", nil, &e))
	assert.Equal(t, "RECIPE_NOT_FOUND", e.Code)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/recipes/requirements/briqueta?units=x", "operario", nil, nil))

	body := map[string]any{"presentation_id": "briqueta", "warehouse_id": "w1", "quantity": 1}
	assert.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/inventory", "operario", body, nil))
	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/inventory", "operario", body, &e))
	assert.Equal(t, "CONFLICT", e.Code)

	assert.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, "/api/inventory/reconciliation", "operario", nil, nil))
}

func TestAPI_TransferenciaYBajoStock(t *testing.T) {
	app := apiApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/inventory", "operario",
		map[string]any{"presentation_id": "briqueta", "warehouse_id": "w1", "quantity": 50, "min_stock": 25}, nil))

	var tr dto.TransferResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/inventory/transfers", "operario", map[string]any{
		"source_warehouse_id": "w1", "destination_warehouse_id": "w2",
		"lines": []map[string]any{{"presentation_id": "briqueta", "quantity": 30}},
	}, &tr))
	assert.Equal(t, 1, tr.LinesTransferred)

	var low dto.InventoryListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/inventory?low_stock=true", "operario", nil, &low))
	require.Len(t, low.Items, 1)
	assert.Equal(t, "w1", low.Items[0].WarehouseID)
	assert.True(t, decimal.NewFromInt(20).Equal(low.Items[0].Quantity))
}
