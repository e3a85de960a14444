package memory

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

type presentationRepo struct{ v view }

func (r presentationRepo) Create(_ context.Context, p *entity.Presentation) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.presentations[p.ID]; ok {
			return domain.Errorf(domain.ErrConflict, "presentación %s ya existe", p.ID)
		}
		st.presentations[p.ID] = *p
		return nil
	})
}

func (r presentationRepo) GetByID(_ context.Context, id string) (*entity.Presentation, error) {
	var out *entity.Presentation
	err := r.v.read(func(st *state) error {
		if p, ok := st.presentations[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

type productRepo struct{ v view }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.Errorf(domain.ErrConflict, "producto %s ya existe", p.ID)
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

type warehouseRepo struct{ v view }

func (r warehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; ok {
			return domain.Errorf(domain.ErrConflict, "almacén %s ya existe", w.ID)
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(func(st *state) error {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}
