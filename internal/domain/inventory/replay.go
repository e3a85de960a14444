package inventory

import (
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Balances estado del libro reconstruido a partir de movimientos.
type Balances struct {
	Lots      map[string]decimal.Decimal
	Inventory map[entity.InventoryKey]decimal.Decimal
}

// Replay pliega el registro de movimientos en saldos de lote (kg) e inventario (unidades).
func Replay(movements []*entity.Movement) Balances {
	b := Balances{
		Lots:      make(map[string]decimal.Decimal),
		Inventory: make(map[entity.InventoryKey]decimal.Decimal),
	}
	for _, m := range movements {
		if m.IsWeight() {
			b.Lots[m.LotID] = b.Lots[m.LotID].Add(m.Signed())
			continue
		}
		k := m.InventoryKey()
		b.Inventory[k] = b.Inventory[k].Add(m.Signed())
	}
	return b
}

// Drift diferencia entre la fila materializada y el saldo reconstruido.
type Drift struct {
	Ledger       string // "lot" | "inventory"
	Resource     string
	Materialized decimal.Decimal
	Replayed     decimal.Decimal
}

// Compare contrasta las filas materializadas con los saldos. Devuelve las diferencias
// ordenadas por recurso; vacío significa libro consistente.
func Compare(b Balances, lots []*entity.Lot, records []*entity.InventoryRecord) []Drift {
	var out []Drift
	seenLots := make(map[string]bool, len(lots))
	for _, l := range lots {
		seenLots[l.ID] = true
		if r := b.Lots[l.ID]; !r.Equal(l.RemainingWeight) {
			out = append(out, Drift{Ledger: "lot", Resource: l.ID, Materialized: l.RemainingWeight, Replayed: r})
		}
	}
	for id, r := range b.Lots {
		if !seenLots[id] && !r.IsZero() {
			out = append(out, Drift{Ledger: "lot", Resource: id, Replayed: r})
		}
	}
	seenKeys := make(map[entity.InventoryKey]bool, len(records))
	for _, rec := range records {
		k := rec.Key()
		seenKeys[k] = true
		if r := b.Inventory[k]; !r.Equal(rec.Quantity) {
			out = append(out, Drift{Ledger: "inventory", Resource: k.String(), Materialized: rec.Quantity, Replayed: r})
		}
	}
	for k, r := range b.Inventory {
		if !seenKeys[k] && !r.IsZero() {
			out = append(out, Drift{Ledger: "inventory", Resource: k.String(), Replayed: r})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ledger != out[j].Ledger {
			return out[i].Ledger < out[j].Ledger
		}
		return out[i].Resource < out[j].Resource
	})
	return out
}
