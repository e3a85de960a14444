package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	Direction      string
	OperationKind  string
	PresentationID string
	LotID          string
	WarehouseID    string
	CorrelationID  string
	From           *time.Time
	To             *time.Time // exclusivo
	Limit          int
	Offset         int
}

// MovementRepository puerto del registro de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.Movement, int, error)
	// All devuelve el registro completo en orden de ocurrencia.
	All(ctx context.Context) ([]*entity.Movement, error)
}
