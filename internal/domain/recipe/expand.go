// Package recipe contiene la lógica pura de listas de materiales: expansión lineal
// de componentes y validación de ciclos.
package recipe

import (
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Requirement instrucción elemental de consumo para producir una cantidad del terminado.
// Quantity son kg para materia prima y unidades para insumos; sin redondear.
type Requirement struct {
	Component entity.RecipeComponent
	Quantity  decimal.Decimal
	LotID     string
}

// IsRawMaterial indica consumo por peso desde un lote.
func (r Requirement) IsRawMaterial() bool {
	return r.Component.ConsumptionKind == entity.ConsumptionRawMaterial
}

// Expand escala cada componente linealmente por units. No elige lotes.
func Expand(r *entity.Recipe, units decimal.Decimal) ([]Requirement, error) {
	if r == nil {
		return nil, domain.ErrRecipeNotFound
	}
	if !units.IsPositive() {
		return nil, domain.Errorf(domain.ErrInvalidInput, "la cantidad a producir debe ser mayor a cero")
	}
	out := make([]Requirement, 0, len(r.Components))
	for _, c := range r.Components {
		out = append(out, Requirement{
			Component: c,
			Quantity:  c.RequiredQuantity.Mul(units),
		})
	}
	return out, nil
}

// LotSelection lote elegido por el llamador para un componente de materia prima.
// El componente se identifica por su id o por la presentación que consume.
type LotSelection struct {
	RecipeComponentID       string
	ComponentPresentationID string
	LotID                   string
}

// Matches indica si la selección corresponde al componente.
func (s LotSelection) Matches(c entity.RecipeComponent) bool {
	if s.RecipeComponentID != "" {
		return s.RecipeComponentID == c.ID
	}
	return s.ComponentPresentationID != "" && s.ComponentPresentationID == c.ComponentPresentationID
}

// AssignLots asocia a cada requerimiento de materia prima el lote elegido.
// Falla con ErrIncompleteLotSelection si falta alguno y con ErrInvalidInput si una
// selección apunta a un insumo.
func AssignLots(reqs []Requirement, selections []LotSelection) error {
	for i := range reqs {
		var chosen *LotSelection
		for j := range selections {
			if selections[j].Matches(reqs[i].Component) {
				chosen = &selections[j]
				break
			}
		}
		if !reqs[i].IsRawMaterial() {
			if chosen != nil {
				return domain.Errorf(domain.ErrInvalidInput,
					"el componente %s es un insumo y no admite lote", reqs[i].Component.ID)
			}
			continue
		}
		if chosen == nil || chosen.LotID == "" {
			return domain.Errorf(domain.ErrIncompleteLotSelection,
				"no se especificó lote para la materia prima %s", reqs[i].Component.ComponentPresentationID)
		}
		reqs[i].LotID = chosen.LotID
	}
	return nil
}

// Matched indica si la selección corresponde a algún componente de las recetas dadas.
func (s LotSelection) Matched(recipes ...*entity.Recipe) bool {
	for _, r := range recipes {
		for _, c := range r.Components {
			if s.Matches(c) {
				return true
			}
		}
	}
	return false
}
