package entity

import (
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Lot lote de materia prima o intermedia, medido por peso restante (kg).
// OriginLotID forma el árbol de trazabilidad y no cambia después de la creación.
type Lot struct {
	ID              string
	Code            string
	ProductID       string
	SupplierID      string
	Description     string
	InitialWeight   decimal.Decimal
	RemainingWeight decimal.Decimal
	OriginLotID     string // vacío si es lote de proveedor
	IsProduction    bool
	IsActive        bool
	ReceivedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Debit descuenta kg del peso restante; nunca lo deja negativo.
func (l *Lot) Debit(kg decimal.Decimal) error {
	if !kg.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "peso a descontar debe ser mayor a cero")
	}
	if kg.GreaterThan(l.RemainingWeight) {
		return domain.Shortfall("lote "+l.label(), kg, l.RemainingWeight)
	}
	l.RemainingWeight = l.RemainingWeight.Sub(kg)
	return nil
}

// Credit suma kg al peso restante.
func (l *Lot) Credit(kg decimal.Decimal) error {
	if !kg.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "peso a acreditar debe ser mayor a cero")
	}
	l.RemainingWeight = l.RemainingWeight.Add(kg)
	return nil
}

func (l *Lot) label() string {
	if l.Code != "" {
		return l.Code
	}
	return l.ID
}
