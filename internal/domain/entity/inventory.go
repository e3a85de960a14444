package entity

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// InventoryKey identifica un registro de inventario. LotID vacío = registro sin lote
// (insumos y stock agnóstico de lote).
type InventoryKey struct {
	PresentationID string
	WarehouseID    string
	LotID          string
}

// Less orden total usado para adquirir bloqueos de forma determinista.
func (k InventoryKey) Less(o InventoryKey) bool {
	if k.PresentationID != o.PresentationID {
		return k.PresentationID < o.PresentationID
	}
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.LotID < o.LotID
}

func (k InventoryKey) String() string {
	s := "presentación " + k.PresentationID + " en almacén " + k.WarehouseID
	if k.LotID != "" {
		s += " lote " + k.LotID
	}
	return s
}

// InventoryRecord stock vendible actual (unidades) de una clave de inventario.
// MinStock solo se usa para alertas, no se impone.
type InventoryRecord struct {
	ID             string
	PresentationID string
	WarehouseID    string
	LotID          string
	Quantity       decimal.Decimal
	MinStock       decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Key devuelve la clave única del registro.
func (r *InventoryRecord) Key() InventoryKey {
	return InventoryKey{PresentationID: r.PresentationID, WarehouseID: r.WarehouseID, LotID: r.LotID}
}

// Debit descuenta unidades; falla con stock insuficiente si no alcanzan.
func (r *InventoryRecord) Debit(units decimal.Decimal) error {
	if !units.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "unidades a descontar deben ser mayores a cero")
	}
	if r.Quantity.LessThan(units) {
		return domain.Shortfall(r.Key().String(), units, r.Quantity)
	}
	r.Quantity = r.Quantity.Sub(units)
	return nil
}

// Credit suma unidades.
func (r *InventoryRecord) Credit(units decimal.Decimal) error {
	if !units.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "unidades a acreditar deben ser mayores a cero")
	}
	r.Quantity = r.Quantity.Add(units)
	return nil
}

// IsLow indica si el registro está en o por debajo del stock mínimo.
func (r *InventoryRecord) IsLow() bool {
	return r.Quantity.LessThanOrEqual(r.MinStock)
}
