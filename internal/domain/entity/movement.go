package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento.
const (
	DirectionEntry = "entry" // entrada
	DirectionExit  = "exit"  // salida
)

// Tipos de operación que originan un movimiento.
const (
	OperationProduction = "production"
	OperationSale       = "sale"
	OperationAdjustment = "adjustment"
	OperationWaste      = "waste"
	OperationTransfer   = "transfer"
	OperationAssembly   = "assembly"
)

// Movement registro inmutable de un delta de stock.
// Sin PresentationID es un movimiento de peso (kg) sobre LotID;
// con PresentationID es un movimiento de unidades sobre (presentación, almacén, lote).
type Movement struct {
	ID             string
	CorrelationID  string
	Direction      string
	PresentationID string
	LotID          string
	WarehouseID    string
	Quantity       decimal.Decimal
	OperationKind  string
	Reason         string
	Actor          string
	OccurredAt     time.Time
	CreatedAt      time.Time
}

// IsWeight indica si el movimiento afecta el peso de un lote.
func (m *Movement) IsWeight() bool { return m.PresentationID == "" }

// InventoryKey clave del registro afectado por un movimiento de unidades.
func (m *Movement) InventoryKey() InventoryKey {
	return InventoryKey{PresentationID: m.PresentationID, WarehouseID: m.WarehouseID, LotID: m.LotID}
}

// Signed cantidad con signo: positiva en entradas, negativa en salidas.
func (m *Movement) Signed() decimal.Decimal {
	if m.Direction == DirectionExit {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ValidOperationKind indica si kind es un tipo de operación conocido.
func ValidOperationKind(kind string) bool {
	switch kind {
	case OperationProduction, OperationSale, OperationAdjustment,
		OperationWaste, OperationTransfer, OperationAssembly:
		return true
	}
	return false
}
