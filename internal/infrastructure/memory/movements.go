package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

func nowUTC() time.Time { return time.Now().UTC() }

type movementRepo struct{ v view }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.v.write(func(st *state) error {
		if !m.Quantity.IsPositive() {
			return errCheck("movements.quantity > 0")
		}
		if m.Direction != entity.DirectionEntry && m.Direction != entity.DirectionExit {
			return errCheck("movements.direction")
		}
		if !entity.ValidOperationKind(m.OperationKind) {
			return errCheck("movements.operation_kind")
		}
		if m.PresentationID == "" && m.LotID == "" {
			return errCheck("movements presentation_id OR lot_id")
		}
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var out []*entity.Movement
	var total int
	err := r.v.read(func(st *state) error {
		var all []*entity.Movement
		// recorrido inverso: más recientes primero, estable por orden de inserción
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if !matchMovement(m, f) {
				continue
			}
			all = append(all, &m)
		}
		sort.SliceStable(all, func(i, j int) bool { return all[i].OccurredAt.After(all[j].OccurredAt) })
		total = len(all)
		out = paginate(all, f.Limit, f.Offset)
		return nil
	})
	return out, total, err
}

func matchMovement(m entity.Movement, f repository.MovementFilter) bool {
	switch {
	case f.Direction != "" && m.Direction != f.Direction,
		f.OperationKind != "" && m.OperationKind != f.OperationKind,
		f.PresentationID != "" && m.PresentationID != f.PresentationID,
		f.LotID != "" && m.LotID != f.LotID,
		f.WarehouseID != "" && m.WarehouseID != f.WarehouseID,
		f.CorrelationID != "" && m.CorrelationID != f.CorrelationID,
		f.From != nil && m.OccurredAt.Before(*f.From),
		f.To != nil && !m.OccurredAt.Before(*f.To):
		return false
	}
	return true
}

func (r movementRepo) All(_ context.Context) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.v.read(func(st *state) error {
		out = make([]*entity.Movement, 0, len(st.movements))
		for i := range st.movements {
			m := st.movements[i]
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}
