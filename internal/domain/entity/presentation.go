package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de presentación.
const (
	PresentationKindRaw       = "raw"       // carbón bruto
	PresentationKindProcessed = "processed" // procesado
	PresentationKindWaste     = "waste"     // merma
	PresentationKindBriquette = "briquette" // briqueta terminada
	PresentationKindRetail    = "retail"    // detalle
	PresentationKindInput     = "input"     // insumo (empaques, etiquetas)
)

// Presentation unidad vendible de un producto con peso fijo por unidad.
// Solo lectura para el núcleo; la mantiene el catálogo.
type Presentation struct {
	ID            string
	ProductID     string
	Name          string
	Kind          string
	WeightPerUnit decimal.Decimal // kg por unidad
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidPresentationKind indica si kind es un tipo conocido.
func ValidPresentationKind(kind string) bool {
	switch kind {
	case PresentationKindRaw, PresentationKindProcessed, PresentationKindWaste,
		PresentationKindBriquette, PresentationKindRetail, PresentationKindInput:
		return true
	}
	return false
}
