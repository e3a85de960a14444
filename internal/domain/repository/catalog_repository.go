package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// PresentationRepository lectura del catálogo de presentaciones.
type PresentationRepository interface {
	Create(ctx context.Context, p *entity.Presentation) error
	GetByID(ctx context.Context, id string) (*entity.Presentation, error)
}

// ProductRepository lectura del catálogo de productos.
type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// WarehouseRepository lectura de almacenes.
type WarehouseRepository interface {
	Create(ctx context.Context, w *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
