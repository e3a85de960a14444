package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas y sus componentes.
type RecipeRepository interface {
	// Create falla con domain.ErrConflict si ya hay receta para la presentación.
	Create(ctx context.Context, recipe *entity.Recipe) error
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	GetByPresentation(ctx context.Context, presentationID string) (*entity.Recipe, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Recipe, int, error)
	// LockGraph serializa las altas de recetas hasta el fin de la transacción; debe
	// llamarse antes de leer Graph.
	LockGraph(ctx context.Context) error
	// Graph devuelve terminado -> presentaciones componentes de todas las recetas.
	Graph(ctx context.Context) (map[string][]string, error)
}
