package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// LotFilter filtros para listar lotes.
type LotFilter struct {
	ProductID   string
	OriginLotID string
	IsActive    *bool
	Limit       int
	Offset      int
}

// LotRepository puerto de persistencia del libro de lotes.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	// GetByID devuelve nil, nil si el lote no existe.
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	UpdateWeight(ctx context.Context, lot *entity.Lot) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, f LotFilter) ([]*entity.Lot, int, error)
	All(ctx context.Context) ([]*entity.Lot, error)
}
