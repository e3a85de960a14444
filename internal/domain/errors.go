package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio del núcleo de producción e inventario.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrTransactionFailure     = errors.New("fallo de transacción, reintentar")
	ErrRecipeNotFound         = errors.New("receta no encontrada")
	ErrIncompleteLotSelection = errors.New("selección de lotes incompleta")
	ErrUnauthorized           = errors.New("no autorizado")
)

// Error añade detalle legible a un error sentinela sin perder errors.Is.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf construye un *Error del tipo indicado.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// StockError describe un faltante: qué recurso, cuánto se pidió y cuánto había.
type StockError struct {
	Resource  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s: requerido %s, disponible %s",
		e.Resource, e.Requested.String(), e.Available.String())
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall construye un *StockError.
func Shortfall(resource string, requested, available decimal.Decimal) error {
	return &StockError{Resource: resource, Requested: requested, Available: available}
}
