package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, correlation_id, direction, presentation_id, lot_id, warehouse_id, quantity,
	operation_kind, reason, actor, occurred_at, created_at`

// MovementRepo registro de movimientos sobre PostgreSQL (solo inserción).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CorrelationID, m.Direction, nullable(m.PresentationID), nullable(m.LotID),
		nullable(m.WarehouseID), m.Quantity, m.OperationKind, m.Reason, nullable(m.Actor),
		m.OccurredAt, m.CreatedAt,
	)
	if err != nil {
		return queryErr("create movement", err)
	}
	return nil
}

// List lista movimientos con filtros, más recientes primero. To es exclusivo.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var w where
	if f.Direction != "" {
		w.add("direction = ?", f.Direction)
	}
	if f.OperationKind != "" {
		w.add("operation_kind = ?", f.OperationKind)
	}
	if f.PresentationID != "" {
		w.add("presentation_id = ?", f.PresentationID)
	}
	if f.LotID != "" {
		w.add("lot_id = ?", f.LotID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.CorrelationID != "" {
		w.add("correlation_id = ?", f.CorrelationID)
	}
	if f.From != nil {
		w.add("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("occurred_at < ?", *f.To)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, queryErr("count movements", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements`+w.sql()+
		` ORDER BY occurred_at DESC, seq DESC`+limit, args...)
	if err != nil {
		return nil, 0, queryErr("list movements", err)
	}
	list, err := collectMovements(rows)
	return list, total, err
}

// All devuelve el registro completo en orden de inserción.
func (r *MovementRepo) All(ctx context.Context) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM movements ORDER BY seq`)
	if err != nil {
		return nil, queryErr("list movements", err)
	}
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var presentation, lot, warehouse, actor *string
		if err := rows.Scan(&m.ID, &m.CorrelationID, &m.Direction, &presentation, &lot, &warehouse,
			&m.Quantity, &m.OperationKind, &m.Reason, &actor, &m.OccurredAt, &m.CreatedAt); err != nil {
			return nil, queryErr("scan movement", err)
		}
		m.PresentationID = deref(presentation)
		m.LotID = deref(lot)
		m.WarehouseID = deref(warehouse)
		m.Actor = deref(actor)
		list = append(list, &m)
	}
	return list, rows.Err()
}
