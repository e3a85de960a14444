package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de consumo de un componente de receta.
const (
	ConsumptionRawMaterial = "raw_material" // por peso desde un lote
	ConsumptionInput       = "input"        // por unidades desde el inventario sin lote
)

// Recipe lista de materiales de una presentación terminada (una por presentación).
type Recipe struct {
	ID             string
	PresentationID string
	Name           string
	Description    string
	Components     []RecipeComponent
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecipeComponent componente necesario para producir UNA unidad del terminado.
type RecipeComponent struct {
	ID                      string
	RecipeID                string
	ComponentPresentationID string
	RequiredQuantity        decimal.Decimal
	ConsumptionKind         string
	Position                int
}

// ComponentPresentationIDs presentaciones consumidas por la receta.
func (r *Recipe) ComponentPresentationIDs() []string {
	ids := make([]string, 0, len(r.Components))
	for _, c := range r.Components {
		ids = append(ids, c.ComponentPresentationID)
	}
	return ids
}
