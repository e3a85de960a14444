package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest entrada para registrar un lote (recepción de materia prima o lote derivado).
type CreateLotRequest struct {
	ProductID     string          `json:"product_id"`
	SupplierID    string          `json:"supplier_id"`
	Code          string          `json:"code,omitempty"`
	Description   string          `json:"description,omitempty"`
	InitialWeight decimal.Decimal `json:"initial_weight"`
	OriginLotID   string          `json:"origin_lot_id,omitempty"`
	ReceivedAt    *time.Time      `json:"received_at,omitempty"`
}

// WeightAdjustmentRequest entrada para débito/crédito manual de peso o registro de merma.
type WeightAdjustmentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// SetLotActiveRequest activa o desactiva un lote.
type SetLotActiveRequest struct {
	Active bool `json:"active"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	ProductID       string          `json:"product_id"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	InitialWeight   decimal.Decimal `json:"initial_weight"`
	RemainingWeight decimal.Decimal `json:"remaining_weight"`
	OriginLotID     string          `json:"origin_lot_id,omitempty"`
	IsProduction    bool            `json:"is_production"`
	IsActive        bool            `json:"is_active"`
	ReceivedAt      time.Time       `json:"received_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LotListResponse lista paginada de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// LotMutationResponse resultado de una mutación de peso.
type LotMutationResponse struct {
	CorrelationID string      `json:"correlation_id"`
	Lot           LotResponse `json:"lot"`
}
