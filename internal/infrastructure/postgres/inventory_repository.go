package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, presentation_id, warehouse_id, lot_id, quantity, min_stock, created_at, updated_at`

// keyCondition compara la clave con lot_id NULL como "sin lote".
const keyCondition = `presentation_id = $1 AND warehouse_id = $2 AND lot_id IS NOT DISTINCT FROM $3`

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	var lot *string
	if err := row.Scan(&rec.ID, &rec.PresentationID, &rec.WarehouseID, &lot,
		&rec.Quantity, &rec.MinStock, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.LotID = deref(lot)
	return &rec, nil
}

func (r *InventoryRepo) getOne(ctx context.Context, query string, key entity.InventoryKey) (*entity.InventoryRecord, error) {
	rec, err := scanRecord(r.q.QueryRow(ctx, query, key.PresentationID, key.WarehouseID, nullable(key.LotID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// Get obtiene el registro de la clave.
func (r *InventoryRepo) Get(ctx context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error) {
	rec, err := r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE `+keyCondition, key)
	if err != nil {
		return nil, queryErr("get inventory", err)
	}
	return rec, nil
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error) {
	rec, err := r.getOne(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE `+keyCondition+` FOR UPDATE`, key)
	if err != nil {
		return nil, queryErr("get inventory for update", err)
	}
	return rec, nil
}

// GetOrCreateForUpdate inserta el registro en cero si no existe y lo bloquea.
// Dos llamadas concurrentes con la misma clave terminan sobre la misma fila.
func (r *InventoryRepo) GetOrCreateForUpdate(ctx context.Context, key entity.InventoryKey, minStock decimal.Decimal) (*entity.InventoryRecord, error) {
	insert := `
		INSERT INTO inventory (id, presentation_id, warehouse_id, lot_id, quantity, min_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, now(), now())
		ON CONFLICT (presentation_id, warehouse_id, lot_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, uuid.New().String(), key.PresentationID, key.WarehouseID, nullable(key.LotID), minStock); err != nil {
		return nil, queryErr("insert inventory", err)
	}
	rec, err := r.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("inventory %s no visible tras insertar", key)
	}
	return rec, nil
}

// Create persiste un registro nuevo; Conflict si la clave ya existe.
func (r *InventoryRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, rec.ID, rec.PresentationID, rec.WarehouseID, nullable(rec.LotID),
		rec.Quantity, rec.MinStock, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.ErrConflict, "ya existe inventario para %s", rec.Key())
		}
		return queryErr("insert inventory", err)
	}
	return nil
}

// UpdateQuantity persiste la cantidad del registro.
func (r *InventoryRepo) UpdateQuantity(ctx context.Context, rec *entity.InventoryRecord) error {
	cmd, err := r.q.Exec(ctx, `UPDATE inventory SET quantity = $2, updated_at = $3 WHERE id = $1`,
		rec.ID, rec.Quantity, rec.UpdatedAt)
	if err != nil {
		return queryErr("update inventory", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Errorf(domain.ErrNotFound, "inventario %s", rec.ID)
	}
	return nil
}

// List lista registros con filtros. LotID NoLot selecciona registros sin lote.
func (r *InventoryRepo) List(ctx context.Context, f repository.InventoryFilter) ([]*entity.InventoryRecord, int, error) {
	var w where
	if f.PresentationID != "" {
		w.add("presentation_id = ?", f.PresentationID)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	switch f.LotID {
	case "":
	case repository.NoLot:
		w.addRaw("lot_id IS NULL")
	default:
		w.add("lot_id = ?", f.LotID)
	}
	if f.LowStock {
		w.addRaw("quantity <= min_stock")
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, queryErr("count inventory", err)
	}
	limit, args := w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory`+w.sql()+
		` ORDER BY presentation_id, warehouse_id, lot_id NULLS FIRST`+limit, args...)
	if err != nil {
		return nil, 0, queryErr("list inventory", err)
	}
	list, err := collectRecords(rows)
	return list, total, err
}

// All devuelve todos los registros.
func (r *InventoryRepo) All(ctx context.Context) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY id`)
	if err != nil {
		return nil, queryErr("list inventory", err)
	}
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]*entity.InventoryRecord, error) {
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, queryErr("scan inventory", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
