package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Operation datos comunes a todos los movimientos de una misma operación.
type Operation struct {
	CorrelationID string
	Kind          string
	Actor         string
	Reason        string
	WarehouseID   string
	At            time.Time
}

// NewOperation genera un id de correlación y una marca de tiempo únicas para la operación.
func NewOperation(kind, actor, reason string) Operation {
	return Operation{
		CorrelationID: uuid.New().String(),
		Kind:          kind,
		Actor:         actor,
		Reason:        reason,
		At:            time.Now().UTC(),
	}
}

// Ledger aplica débitos y créditos sobre lotes e inventario dentro de una transacción
// abierta, escribiendo exactamente un movimiento por mutación.
// Todas las filas deben bloquearse con Lock antes de leerlas o mutarlas.
type Ledger struct {
	repos   Repos
	op      Operation
	lots    map[string]*entity.Lot
	records map[entity.InventoryKey]*entity.InventoryRecord
	written int
}

// NewLedger construye un Ledger sobre repos transaccionales.
func NewLedger(repos Repos, op Operation) *Ledger {
	return &Ledger{
		repos:   repos,
		op:      op,
		lots:    make(map[string]*entity.Lot),
		records: make(map[entity.InventoryKey]*entity.InventoryRecord),
	}
}

// Lock bloquea (SELECT FOR UPDATE) todas las filas del conjunto en orden determinista.
// Los lotes inexistentes quedan ausentes; las claves de crédito se crean en cero.
func (l *Ledger) Lock(ctx context.Context, set *domaininv.LockSet, minStock func(entity.InventoryKey) decimal.Decimal) error {
	for _, id := range set.Lots() {
		lot, err := l.repos.Lots.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if lot != nil {
			l.lots[id] = lot
		}
	}
	for _, kl := range set.Keys() {
		var (
			rec *entity.InventoryRecord
			err error
		)
		if kl.Create {
			ms := decimal.Zero
			if minStock != nil {
				ms = minStock(kl.Key)
			}
			rec, err = l.repos.Inventory.GetOrCreateForUpdate(ctx, kl.Key, ms)
		} else {
			rec, err = l.repos.Inventory.GetForUpdate(ctx, kl.Key)
		}
		if err != nil {
			return err
		}
		if rec != nil {
			l.records[kl.Key] = rec
		}
	}
	return nil
}

// Lot devuelve un lote bloqueado.
func (l *Ledger) Lot(id string) (*entity.Lot, bool) {
	lot, ok := l.lots[id]
	return lot, ok
}

// Record devuelve un registro bloqueado.
func (l *Ledger) Record(key entity.InventoryKey) (*entity.InventoryRecord, bool) {
	rec, ok := l.records[key]
	return rec, ok
}

// Available unidades disponibles en la clave (cero si no existe el registro).
func (l *Ledger) Available(key entity.InventoryKey) decimal.Decimal {
	if rec, ok := l.records[key]; ok {
		return rec.Quantity
	}
	return decimal.Zero
}

// SetReason cambia el motivo de los movimientos siguientes.
func (l *Ledger) SetReason(reason string) { l.op.Reason = reason }

// Written movimientos escritos hasta ahora.
func (l *Ledger) Written() int { return l.written }

// DebitWeight descuenta kg de un lote bloqueado y registra la salida de peso.
func (l *Ledger) DebitWeight(ctx context.Context, lotID string, kg decimal.Decimal) error {
	lot, err := l.lockedLot(lotID)
	if err != nil {
		return err
	}
	kg = domaininv.RoundWeight(kg)
	if err := lot.Debit(kg); err != nil {
		return err
	}
	return l.saveLot(ctx, lot, entity.DirectionExit, kg)
}

// CreditWeight suma kg a un lote bloqueado y registra la entrada de peso.
func (l *Ledger) CreditWeight(ctx context.Context, lotID string, kg decimal.Decimal) error {
	lot, err := l.lockedLot(lotID)
	if err != nil {
		return err
	}
	kg = domaininv.RoundWeight(kg)
	if err := lot.Credit(kg); err != nil {
		return err
	}
	return l.saveLot(ctx, lot, entity.DirectionEntry, kg)
}

// DebitUnits descuenta unidades de un registro bloqueado y registra la salida.
func (l *Ledger) DebitUnits(ctx context.Context, key entity.InventoryKey, units decimal.Decimal) error {
	units = domaininv.RoundUnits(units)
	rec, ok := l.records[key]
	if !ok {
		return domain.Shortfall(key.String(), units, decimal.Zero)
	}
	if err := rec.Debit(units); err != nil {
		return err
	}
	return l.saveRecord(ctx, rec, entity.DirectionExit, units)
}

// CreditUnits suma unidades a un registro bloqueado (creado en Lock) y registra la entrada.
func (l *Ledger) CreditUnits(ctx context.Context, key entity.InventoryKey, units decimal.Decimal) error {
	units = domaininv.RoundUnits(units)
	rec, ok := l.records[key]
	if !ok {
		return fmt.Errorf("registro %s no bloqueado", key)
	}
	if err := rec.Credit(units); err != nil {
		return err
	}
	return l.saveRecord(ctx, rec, entity.DirectionEntry, units)
}

func (l *Ledger) lockedLot(id string) (*entity.Lot, error) {
	lot, ok := l.lots[id]
	if !ok {
		return nil, domain.Errorf(domain.ErrNotFound, "lote %s", id)
	}
	return lot, nil
}

func (l *Ledger) saveLot(ctx context.Context, lot *entity.Lot, direction string, kg decimal.Decimal) error {
	lot.UpdatedAt = l.op.At
	if err := l.repos.Lots.UpdateWeight(ctx, lot); err != nil {
		return err
	}
	return l.Append(ctx, &entity.Movement{
		Direction:   direction,
		LotID:       lot.ID,
		WarehouseID: l.op.WarehouseID,
		Quantity:    kg,
	})
}

func (l *Ledger) saveRecord(ctx context.Context, rec *entity.InventoryRecord, direction string, units decimal.Decimal) error {
	rec.UpdatedAt = l.op.At
	if err := l.repos.Inventory.UpdateQuantity(ctx, rec); err != nil {
		return err
	}
	return l.Append(ctx, &entity.Movement{
		Direction:      direction,
		PresentationID: rec.PresentationID,
		LotID:          rec.LotID,
		WarehouseID:    rec.WarehouseID,
		Quantity:       units,
	})
}

// Append completa el movimiento con los datos de la operación y lo persiste.
// Valida cantidad positiva y dirección.
func (l *Ledger) Append(ctx context.Context, m *entity.Movement) error {
	if !m.Quantity.IsPositive() {
		return domain.Errorf(domain.ErrInvalidInput, "la cantidad del movimiento debe ser mayor a cero")
	}
	if m.Direction != entity.DirectionEntry && m.Direction != entity.DirectionExit {
		return domain.Errorf(domain.ErrInvalidInput, "dirección inválida: %q", m.Direction)
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CorrelationID = l.op.CorrelationID
	m.OperationKind = l.op.Kind
	m.Actor = l.op.Actor
	if m.Reason == "" {
		m.Reason = l.op.Reason
	}
	m.OccurredAt = l.op.At
	m.CreatedAt = l.op.At
	if err := l.repos.Movements.Create(ctx, m); err != nil {
		return err
	}
	l.written++
	return nil
}
