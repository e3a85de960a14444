package inventory_test

import (
	"testing"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRounding_HalfUp(t *testing.T) {
	assert.Equal(t, "1.01", inventory.RoundWeight(d("1.005")).StringFixed(2))
	assert.Equal(t, "1.00", inventory.RoundWeight(d("0.9999")).StringFixed(2))
	assert.Equal(t, "0.3334", inventory.RoundUnits(d("0.33335")).StringFixed(4))
	assert.Equal(t, "120.00", inventory.ProducedWeight(d("100"), d("1.2")).StringFixed(2))
}

func TestLockSet_OrdenDeterminista(t *testing.T) {
	s := inventory.NewLockSet()
	s.AddLot("L2")
	s.AddLot("")
	s.AddLot("L1")
	s.AddLot("L2")
	b := entity.InventoryKey{PresentationID: "b", WarehouseID: "w1"}
	a2 := entity.InventoryKey{PresentationID: "a", WarehouseID: "w2"}
	a1 := entity.InventoryKey{PresentationID: "a", WarehouseID: "w1"}
	s.AddCredit(b)
	s.AddDebit(a2)
	s.AddDebit(a1)
	s.AddDebit(b)

	assert.Equal(t, []string{"L1", "L2"}, s.Lots())
	assert.Equal(t, []inventory.KeyLock{
		{Key: a1, Create: false},
		{Key: a2, Create: false},
		{Key: b, Create: true},
	}, s.Keys())
}

func mov(dir, presentation, lot, qty string) *entity.Movement {
	return &entity.Movement{Direction: dir, PresentationID: presentation, LotID: lot, WarehouseID: "w1", Quantity: d(qty), OccurredAt: time.Now()}
}

func TestReplayYCompare(t *testing.T) {
	movs := []*entity.Movement{
		mov(entity.DirectionEntry, "", "L1", "1000"),
		mov(entity.DirectionExit, "", "L1", "150"),
		mov(entity.DirectionEntry, "briqueta", "", "100"),
		mov(entity.DirectionExit, "briqueta", "", "30"),
	}
	b := inventory.Replay(movs)
	assert.True(t, d("850").Equal(b.Lots["L1"]))
	key := entity.InventoryKey{PresentationID: "briqueta", WarehouseID: "w1"}
	assert.True(t, d("70").Equal(b.Inventory[key]))

	lots := []*entity.Lot{{ID: "L1", RemainingWeight: d("850")}}
	records := []*entity.InventoryRecord{{PresentationID: "briqueta", WarehouseID: "w1", Quantity: d("70")}}
	assert.Empty(t, inventory.Compare(b, lots, records))

	records[0].Quantity = d("71")
	lots = append(lots, &entity.Lot{ID: "L0", RemainingWeight: d("5")})
	drifts := inventory.Compare(b, lots, records)
	require.Len(t, drifts, 2)
	assert.Equal(t, "inventory", drifts[0].Ledger)
	assert.True(t, d("71").Equal(drifts[0].Materialized))
	assert.Equal(t, "lot", drifts[1].Ledger)
	assert.Equal(t, "L0", drifts[1].Resource)
	assert.True(t, drifts[1].Replayed.IsZero())
}

func TestCompare_SaldoSinFila(t *testing.T) {
	b := inventory.Replay([]*entity.Movement{mov(entity.DirectionEntry, "", "L9", "3")})
	drifts := inventory.Compare(b, nil, nil)
	require.Len(t, drifts, 1)
	assert.Equal(t, "L9", drifts[0].Resource)
}
