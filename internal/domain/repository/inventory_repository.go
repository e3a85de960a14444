package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryFilter filtros de consulta de inventario. LotID "-" filtra registros sin lote.
type InventoryFilter struct {
	PresentationID string
	WarehouseID    string
	LotID          string
	LowStock       bool
	Limit          int
	Offset         int
}

// NoLot valor de InventoryFilter.LotID que selecciona registros sin lote.
const NoLot = "-"

// InventoryRepository puerto del libro de inventario (unique: presentación+almacén+lote).
type InventoryRepository interface {
	// Get devuelve nil, nil si no hay registro para la clave.
	Get(ctx context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila si existe; nil, nil si no existe.
	GetForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error)
	// GetOrCreateForUpdate crea el registro en cero si falta y lo bloquea. Idempotente.
	GetOrCreateForUpdate(ctx context.Context, key entity.InventoryKey, minStock decimal.Decimal) (*entity.InventoryRecord, error)
	// Create falla con domain.ErrConflict si la clave ya existe.
	Create(ctx context.Context, rec *entity.InventoryRecord) error
	UpdateQuantity(ctx context.Context, rec *entity.InventoryRecord) error
	List(ctx context.Context, f InventoryFilter) ([]*entity.InventoryRecord, int, error)
	All(ctx context.Context) ([]*entity.InventoryRecord, error)
}
