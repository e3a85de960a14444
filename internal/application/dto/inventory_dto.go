package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialStockRequest body para POST /api/inventory: alta de un registro con stock inicial.
type InitialStockRequest struct {
	PresentationID string           `json:"presentation_id"`
	WarehouseID    string           `json:"warehouse_id"`
	LotID          string           `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal  `json:"quantity"`
	MinStock       *decimal.Decimal `json:"min_stock,omitempty"`
}

// UnitAdjustmentRequest débito/crédito manual de unidades sobre una clave de inventario.
type UnitAdjustmentRequest struct {
	PresentationID string          `json:"presentation_id"`
	WarehouseID    string          `json:"warehouse_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason,omitempty"`
}

// InventoryQuery filtros de GET /api/inventory.
type InventoryQuery struct {
	PresentationID string `query:"presentation_id"`
	WarehouseID    string `query:"warehouse_id"`
	LotID          string `query:"lot_id"`
	LowStock       bool   `query:"low_stock"`
	PageRequest
}

// InventoryResponse salida de un registro de inventario.
type InventoryResponse struct {
	ID             string          `json:"id"`
	PresentationID string          `json:"presentation_id"`
	WarehouseID    string          `json:"warehouse_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	MinStock       decimal.Decimal `json:"min_stock"`
	LowStock       bool            `json:"low_stock"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InventoryListResponse lista paginada de inventario.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// InventoryMutationResponse resultado de una mutación de unidades.
type InventoryMutationResponse struct {
	CorrelationID string            `json:"correlation_id"`
	Record        InventoryResponse `json:"record"`
}

// TransferLine línea de transferencia. LotID solo si las transferencias por lote están habilitadas.
type TransferLine struct {
	PresentationID string          `json:"presentation_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	SourceWarehouseID      string         `json:"source_warehouse_id"`
	DestinationWarehouseID string         `json:"destination_warehouse_id"`
	Lines                  []TransferLine `json:"lines"`
}

// TransferResponse resultado de una transferencia.
type TransferResponse struct {
	CorrelationID    string         `json:"correlation_id"`
	LinesTransferred int            `json:"lines_transferred"`
	Lines            []TransferLine `json:"lines"`
}

// MovementQuery filtros de GET /api/movements. Fechas en formato YYYY-MM-DD; To inclusive.
type MovementQuery struct {
	Direction      string `query:"direction"`
	OperationKind  string `query:"operation_kind"`
	PresentationID string `query:"presentation_id"`
	LotID          string `query:"lot_id"`
	WarehouseID    string `query:"warehouse_id"`
	CorrelationID  string `query:"correlation_id"`
	From           string `query:"from"`
	To             string `query:"to"`
	PageRequest
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string          `json:"id"`
	CorrelationID  string          `json:"correlation_id"`
	Direction      string          `json:"direction"`
	PresentationID string          `json:"presentation_id,omitempty"`
	LotID          string          `json:"lot_id,omitempty"`
	WarehouseID    string          `json:"warehouse_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	OperationKind  string          `json:"operation_kind"`
	Reason         string          `json:"reason"`
	Actor          string          `json:"actor"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DriftResponse diferencia entre fila materializada y saldo reconstruido.
type DriftResponse struct {
	Ledger       string          `json:"ledger"`
	Resource     string          `json:"resource"`
	Materialized decimal.Decimal `json:"materialized"`
	Replayed     decimal.Decimal `json:"replayed"`
}

// ReconciliationResponse resultado de reconstruir el libro desde los movimientos.
type ReconciliationResponse struct {
	Movements  int             `json:"movements"`
	Lots       int             `json:"lots"`
	Records    int             `json:"records"`
	Consistent bool            `json:"consistent"`
	Drifts     []DriftResponse `json:"drifts"`
}
