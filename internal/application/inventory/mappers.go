package inventory

import (
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:              l.ID,
		Code:            l.Code,
		ProductID:       l.ProductID,
		SupplierID:      l.SupplierID,
		Description:     l.Description,
		InitialWeight:   l.InitialWeight,
		RemainingWeight: l.RemainingWeight,
		OriginLotID:     l.OriginLotID,
		IsProduction:    l.IsProduction,
		IsActive:        l.IsActive,
		ReceivedAt:      l.ReceivedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func toInventoryResponse(r *entity.InventoryRecord) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:             r.ID,
		PresentationID: r.PresentationID,
		WarehouseID:    r.WarehouseID,
		LotID:          r.LotID,
		Quantity:       r.Quantity,
		MinStock:       r.MinStock,
		LowStock:       r.IsLow(),
		UpdatedAt:      r.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		CorrelationID:  m.CorrelationID,
		Direction:      m.Direction,
		PresentationID: m.PresentationID,
		LotID:          m.LotID,
		WarehouseID:    m.WarehouseID,
		Quantity:       m.Quantity,
		OperationKind:  m.OperationKind,
		Reason:         m.Reason,
		Actor:          m.Actor,
		OccurredAt:     m.OccurredAt,
	}
}
