package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

type lotRepo struct{ v view }

func (r lotRepo) Create(_ context.Context, l *entity.Lot) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.lots[l.ID]; ok {
			return domain.Errorf(domain.ErrConflict, "lote %s ya existe", l.ID)
		}
		for _, other := range st.lots {
			if other.Code == l.Code {
				return domain.Errorf(domain.ErrConflict, "ya existe un lote con código %s", l.Code)
			}
		}
		if l.OriginLotID != "" {
			if _, ok := st.lots[l.OriginLotID]; !ok {
				return domain.Errorf(domain.ErrNotFound, "lote de origen %s", l.OriginLotID)
			}
		}
		if l.RemainingWeight.IsNegative() {
			return errCheck("lots.remaining_weight >= 0")
		}
		st.lots[l.ID] = *l
		return nil
	})
}

func (r lotRepo) GetByID(_ context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.v.read(func(st *state) error {
		if l, ok := st.lots[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloqueo propio: la transacción ya tiene el estado en exclusiva.
func (r lotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r lotRepo) UpdateWeight(_ context.Context, l *entity.Lot) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.lots[l.ID]
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "lote %s", l.ID)
		}
		if l.RemainingWeight.IsNegative() {
			return errCheck("lots.remaining_weight >= 0")
		}
		cur.RemainingWeight = l.RemainingWeight
		cur.UpdatedAt = l.UpdatedAt
		st.lots[l.ID] = cur
		return nil
	})
}

func (r lotRepo) SetActive(_ context.Context, id string, active bool) error {
	return r.v.write(func(st *state) error {
		cur, ok := st.lots[id]
		if !ok {
			return domain.Errorf(domain.ErrNotFound, "lote %s", id)
		}
		cur.IsActive = active
		st.lots[id] = cur
		return nil
	})
}

func (r lotRepo) List(_ context.Context, f repository.LotFilter) ([]*entity.Lot, int, error) {
	var out []*entity.Lot
	var total int
	err := r.v.read(func(st *state) error {
		var all []*entity.Lot
		for _, l := range st.lots {
			if f.ProductID != "" && l.ProductID != f.ProductID {
				continue
			}
			if f.OriginLotID != "" && l.OriginLotID != f.OriginLotID {
				continue
			}
			if f.IsActive != nil && l.IsActive != *f.IsActive {
				continue
			}
			l := l
			all = append(all, &l)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].ReceivedAt.Equal(all[j].ReceivedAt) {
				return all[i].ReceivedAt.After(all[j].ReceivedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		out = paginate(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func (r lotRepo) All(_ context.Context) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.v.read(func(st *state) error {
		for _, l := range st.lots {
			l := l
			out = append(out, &l)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}
