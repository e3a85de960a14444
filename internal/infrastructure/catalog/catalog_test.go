package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/catalog"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const (
	whID   = "11111111-1111-1111-1111-111111111111"
	prodID = "22222222-2222-2222-2222-222222222222"
	presID = "33333333-3333-3333-3333-333333333333"

	header = "tipo;id;nombre;referencia;clase;peso_por_unidad\n"
	sample = header +
		"presentacion;" + presID + ";Briqueta 1,2 kg;" + prodID + ";briquette;1,2\n" +
		"producto;" + prodID + ";Carbón vegetal;;;\n" +
		"bodega;" + whID + ";Planta Medellín;Itagüí;;\n"
)

var ctx = context.Background()

func writeLatin1(t *testing.T, s string) string {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "catalogo.csv")
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestOpen_Latin1(t *testing.T) {
	cat, err := catalog.Open(writeLatin1(t, sample))
	require.NoError(t, err)
	require.Len(t, cat.Presentations, 1)
	assert.Equal(t, "1.2", cat.Presentations[0].Weight.String())
	assert.Equal(t, prodID, cat.Presentations[0].Ref)
	assert.Equal(t, "Carbón vegetal", cat.Products[0].Name)
	assert.Equal(t, "Itagüí", cat.Warehouses[0].Ref)
}

func TestParse_Errores(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"id inválido", "bodega;abc;Planta;;;\n", "id inválido"},
		{"nombre vacío", "bodega;" + whID + ";;;;\n", "nombre vacío"},
		{"clase desconocida", "presentacion;" + presID + ";X;" + prodID + ";granel;1\n", "clase desconocida"},
		{"peso negativo", "producto;" + prodID + ";C;;;\npresentacion;" + presID + ";X;" + prodID + ";raw;-1\n", "peso por unidad"},
		{"producto ausente", "presentacion;" + presID + ";X;" + prodID + ";raw;1\n", "no está en el archivo"},
		{"tipo desconocido", "cliente;" + whID + ";X;;;\n", "tipo desconocido"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse(strings.NewReader(header + tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_IdempotenteEnMemoria(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	s := memory.New()

	res, err := catalog.Load(ctx, s, cat)
	require.NoError(t, err)
	assert.Equal(t, catalog.LoadResult{Created: 3}, res)

	res, err = catalog.Load(ctx, s, cat)
	require.NoError(t, err)
	assert.Equal(t, catalog.LoadResult{Existing: 3}, res)

	p, err := s.Repos().Presentations.GetByID(ctx, presID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, prodID, p.ProductID)
	assert.True(t, p.Active)
	w, err := s.Repos().Warehouses.GetByID(ctx, whID)
	require.NoError(t, err)
	assert.Equal(t, "Itagüí", w.City)
}

func TestLoad_HabilitaOperacionesEnSQLite(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader(sample))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "libro.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	_, err = catalog.Load(ctx, s, cat)
	require.NoError(t, err)
	stock := inventory.NewStockUseCase(s, s.Repos(), logger.Nop(), nil, decimal.Zero)
	_, err = stock.RegisterInitialStock(ctx, "operario-1", dto.InitialStockRequest{
		PresentationID: presID, WarehouseID: whID, Quantity: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// el catálogo y el stock sobreviven al reinicio; recargar no duplica nada
	s, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	res, err := catalog.Load(ctx, s, cat)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Existing)
	assert.Zero(t, res.Created)
	inv, err := inventory.NewStockUseCase(s, s.Repos(), logger.Nop(), nil, decimal.Zero).
		GetInventory(ctx, dto.InventoryQuery{WarehouseID: whID})
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.True(t, decimal.NewFromInt(40).Equal(inv.Items[0].Quantity))
}
