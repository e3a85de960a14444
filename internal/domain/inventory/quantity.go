package inventory

import "github.com/shopspring/decimal"

// Escalas de persistencia: NUMERIC(12,4) para unidades, NUMERIC(12,2) para kg de lote.
const (
	UnitScale   int32 = 4
	WeightScale int32 = 2
)

// RoundUnits redondea half-up una cantidad de unidades al valor persistido.
// Solo se aplica al valor final, nunca a sumas intermedias.
func RoundUnits(d decimal.Decimal) decimal.Decimal { return d.Round(UnitScale) }

// RoundWeight redondea half-up un peso en kg al valor persistido.
func RoundWeight(d decimal.Decimal) decimal.Decimal { return d.Round(WeightScale) }

// ProducedWeight kg que representan units unidades de una presentación.
func ProducedWeight(units, weightPerUnit decimal.Decimal) decimal.Decimal {
	return RoundWeight(units.Mul(weightPerUnit))
}
