package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, code, product_id, supplier_id, description, initial_weight, remaining_weight,
	origin_lot_id, is_production, is_active, received_at, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	var supplier, description, origin *string
	if err := row.Scan(&l.ID, &l.Code, &l.ProductID, &supplier, &description,
		&l.InitialWeight, &l.RemainingWeight, &origin, &l.IsProduction, &l.IsActive,
		&l.ReceivedAt, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.SupplierID = deref(supplier)
	l.Description = deref(description)
	l.OriginLotID = deref(origin)
	return &l, nil
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Code, l.ProductID, nullable(l.SupplierID), nullable(l.Description),
		l.InitialWeight, l.RemainingWeight, nullable(l.OriginLotID), l.IsProduction, l.IsActive,
		l.ReceivedAt, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.ErrConflict, "ya existe un lote con código %s", l.Code)
		}
		return queryErr("insert lot", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("get lot", err)
	}
	return l, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("get lot for update", err)
	}
	return l, nil
}

// UpdateWeight persiste el peso restante.
func (r *LotRepo) UpdateWeight(ctx context.Context, l *entity.Lot) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE lots SET remaining_weight = $2, updated_at = $3 WHERE id = $1`,
		l.ID, l.RemainingWeight, l.UpdatedAt)
	if err != nil {
		return queryErr("update lot weight", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrNotFound, "lote %s", l.ID)
	}
	return nil
}

// SetActive activa o desactiva un lote.
func (r *LotRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.q.Exec(ctx, `UPDATE lots SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return queryErr("set lot active", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrNotFound, "lote %s", id)
	}
	return nil
}

// List lista lotes con filtros, más recientes primero.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, int, error) {
	var w where
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if f.OriginLotID != "" {
		w.add("origin_lot_id = ?", f.OriginLotID)
	}
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM lots`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, queryErr("count lots", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM lots`+w.sql()+` ORDER BY received_at DESC, id`+limit, args...)
	if err != nil {
		return nil, 0, queryErr("list lots", err)
	}
	list, err := collectLots(rows)
	return list, total, err
}

// All devuelve todos los lotes.
func (r *LotRepo) All(ctx context.Context) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lotColumns+` FROM lots ORDER BY id`)
	if err != nil {
		return nil, queryErr("list lots", err)
	}
	return collectLots(rows)
}

func collectLots(rows pgx.Rows) ([]*entity.Lot, error) {
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, queryErr("scan lot", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
