package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// errCheck emula la violación de un CHECK de la base.
func errCheck(constraint string) error {
	return errors.New("violación de restricción " + constraint)
}

type inventoryRepo struct{ v view }

func (r inventoryRepo) Get(_ context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	err := r.v.read(func(st *state) error {
		if rec, ok := st.inventory[key]; ok {
			out = &rec
		}
		return nil
	})
	return out, err
}

func (r inventoryRepo) GetForUpdate(ctx context.Context, key entity.InventoryKey) (*entity.InventoryRecord, error) {
	return r.Get(ctx, key)
}

func (r inventoryRepo) GetOrCreateForUpdate(_ context.Context, key entity.InventoryKey, minStock decimal.Decimal) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	err := r.v.write(func(st *state) error {
		rec, ok := st.inventory[key]
		if !ok {
			now := nowUTC()
			rec = entity.InventoryRecord{
				ID:             uuid.New().String(),
				PresentationID: key.PresentationID,
				WarehouseID:    key.WarehouseID,
				LotID:          key.LotID,
				Quantity:       decimal.Zero,
				MinStock:       minStock,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			st.inventory[key] = rec
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r inventoryRepo) Create(_ context.Context, rec *entity.InventoryRecord) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.inventory[rec.Key()]; ok {
			return domain.Errorf(domain.ErrConflict, "ya existe inventario para %s", rec.Key())
		}
		if rec.Quantity.IsNegative() {
			return errCheck("inventory.quantity >= 0")
		}
		st.inventory[rec.Key()] = *rec
		return nil
	})
}

func (r inventoryRepo) UpdateQuantity(_ context.Context, rec *entity.InventoryRecord) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.inventory[rec.Key()]
		if !ok || cur.ID != rec.ID {
			return domain.Errorf(domain.ErrNotFound, "inventario %s", rec.ID)
		}
		if rec.Quantity.IsNegative() {
			return errCheck("inventory.quantity >= 0")
		}
		cur.Quantity = rec.Quantity
		cur.UpdatedAt = rec.UpdatedAt
		st.inventory[rec.Key()] = cur
		return nil
	})
}

func (r inventoryRepo) List(_ context.Context, f repository.InventoryFilter) ([]*entity.InventoryRecord, int, error) {
	var out []*entity.InventoryRecord
	var total int
	err := r.v.read(func(st *state) error {
		var all []*entity.InventoryRecord
		for _, rec := range st.inventory {
			if f.PresentationID != "" && rec.PresentationID != f.PresentationID {
				continue
			}
			if f.WarehouseID != "" && rec.WarehouseID != f.WarehouseID {
				continue
			}
			switch f.LotID {
			case "":
			case repository.NoLot:
				if rec.LotID != "" {
					continue
				}
			default:
				if rec.LotID != f.LotID {
					continue
				}
			}
			if f.LowStock && !rec.IsLow() {
				continue
			}
			rec := rec
			all = append(all, &rec)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Key().Less(all[j].Key()) })
		total = len(all)
		out = paginate(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r inventoryRepo) All(_ context.Context) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	err := r.v.read(func(st *state) error {
		for _, rec := range st.inventory {
			rec := rec
			out = append(out, &rec)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
		return nil
	})
	return out, err
}
