package inventory_test

import (
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer_MueveUnidadesConUnaCorrelacion(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")

	out, err := f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID:      w1,
		DestinationWarehouseID: w2,
		Lines:                  []dto.TransferLine{{PresentationID: p1, Quantity: dec("30")}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.LinesTransferred)
	assert.True(t, dec("20").Equal(f.units(t, p1, w1, "")))
	assert.True(t, dec("30").Equal(f.units(t, p1, w2, "")))

	movs, total, err := f.repos.Movements.List(ctx, repository.MovementFilter{CorrelationID: out.CorrelationID})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	byDir := map[string]*entity.Movement{}
	for _, m := range movs {
		byDir[m.Direction] = m
	}
	assert.Equal(t, w1, byDir[entity.DirectionExit].WarehouseID)
	assert.Equal(t, "Transferencia a Bodega Norte", byDir[entity.DirectionExit].Reason)
	assert.Equal(t, w2, byDir[entity.DirectionEntry].WarehouseID)
	assert.Equal(t, "Transferencia desde Planta", byDir[entity.DirectionEntry].Reason)
	for _, m := range movs {
		assert.True(t, dec("30").Equal(m.Quantity))
		assert.Equal(t, entity.OperationTransfer, m.OperationKind)
	}
	f.consistent(t)
}

func TestTransfer_UnaLineaInsuficienteNoMutaNinguna(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")
	f.seed(t, p2, w1, "5")
	before := f.store.Snapshot()

	_, err := f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID:      w1,
		DestinationWarehouseID: w2,
		Lines: []dto.TransferLine{
			{PresentationID: p1, Quantity: dec("30")},
			{PresentationID: p2, Quantity: dec("6")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestTransfer_LineasRepetidasSeAgregan(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")

	// 30 + 30 excede 50 aunque cada línea quepa sola
	_, err := f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID:      w1,
		DestinationWarehouseID: w2,
		Lines: []dto.TransferLine{
			{PresentationID: p1, Quantity: dec("30")},
			{PresentationID: p1, Quantity: dec("30")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	out, err := f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID:      w1,
		DestinationWarehouseID: w2,
		Lines: []dto.TransferLine{
			{PresentationID: p1, Quantity: dec("20")},
			{PresentationID: p1, Quantity: dec("5.5")},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Lines, 1)
	assert.True(t, dec("25.5").Equal(out.Lines[0].Quantity))
	assert.True(t, dec("24.5").Equal(f.units(t, p1, w1, "")))
}

func TestTransfer_DestinoNuevoHeredaMinimo(t *testing.T) {
	f := newFixture(t, false)
	min := dec("10")
	_, err := f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p1, WarehouseID: w1, Quantity: dec("50"), MinStock: &min})
	require.NoError(t, err)

	_, err = f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID: w1, DestinationWarehouseID: w2,
		Lines: []dto.TransferLine{{PresentationID: p1, Quantity: dec("5")}},
	})
	require.NoError(t, err)

	rec, err := f.repos.Inventory.Get(ctx, entity.InventoryKey{PresentationID: p1, WarehouseID: w2})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, min.Equal(rec.MinStock))
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t, false)
	f.seed(t, p1, w1, "50")
	line := []dto.TransferLine{{PresentationID: p1, Quantity: dec("1")}}

	cases := []struct {
		name string
		in   dto.TransferRequest
		want error
	}{
		{"mismo almacén", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w1, Lines: line}, domain.ErrInvalidInput},
		{"sin líneas", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w2}, domain.ErrInvalidInput},
		{"cantidad cero", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w2,
			Lines: []dto.TransferLine{{PresentationID: p1, Quantity: dec("0")}}}, domain.ErrInvalidInput},
		{"lote sin modo por lote", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w2,
			Lines: []dto.TransferLine{{PresentationID: p1, LotID: "L1", Quantity: dec("1")}}}, domain.ErrInvalidInput},
		{"origen inexistente", dto.TransferRequest{SourceWarehouseID: "w9", DestinationWarehouseID: w2, Lines: line}, domain.ErrNotFound},
		{"destino inexistente", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: "w9", Lines: line}, domain.ErrNotFound},
		{"presentación inexistente", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w2,
			Lines: []dto.TransferLine{{PresentationID: "nada", Quantity: dec("1")}}}, domain.ErrNotFound},
		{"sin registro en origen", dto.TransferRequest{SourceWarehouseID: w1, DestinationWarehouseID: w2,
			Lines: []dto.TransferLine{{PresentationID: p2, Quantity: dec("1")}}}, domain.ErrInsufficientStock},
	}
	before := f.store.Snapshot()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfers.TransferStock(ctx, actor, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, before, f.store.Snapshot())
}

func TestTransfer_PorLoteConservaElLote(t *testing.T) {
	f := newFixture(t, true)
	lot, err := f.lots.CreateLot(ctx, actor, dto.CreateLotRequest{ProductID: productID, InitialWeight: dec("100")})
	require.NoError(t, err)
	_, err = f.stock.RegisterInitialStock(ctx, actor, dto.InitialStockRequest{PresentationID: p1, WarehouseID: w1, LotID: lot.ID, Quantity: dec("10")})
	require.NoError(t, err)

	_, err = f.transfers.TransferStock(ctx, actor, dto.TransferRequest{
		SourceWarehouseID: w1, DestinationWarehouseID: w2,
		Lines: []dto.TransferLine{{PresentationID: p1, LotID: lot.ID, Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.True(t, dec("6").Equal(f.units(t, p1, w1, lot.ID)))
	assert.True(t, dec("4").Equal(f.units(t, p1, w2, lot.ID)))
	assert.True(t, f.units(t, p1, w2, "").IsZero())
	f.consistent(t)
}
