package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

type recipeRepo struct{ v view }

func copyRecipe(r entity.Recipe) *entity.Recipe {
	r.Components = append([]entity.RecipeComponent(nil), r.Components...)
	return &r
}

func (r recipeRepo) Create(_ context.Context, rec *entity.Recipe) error {
	return r.v.write(func(st *state) error {
		for _, other := range st.recipes {
			if other.PresentationID == rec.PresentationID {
				return domain.Errorf(domain.ErrConflict, "ya existe una receta para la presentación %s", rec.PresentationID)
			}
		}
		if _, ok := st.recipes[rec.ID]; ok {
			return domain.Errorf(domain.ErrConflict, "receta %s ya existe", rec.ID)
		}
		st.recipes[rec.ID] = *copyRecipe(*rec)
		return nil
	})
}

func (r recipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.v.read(func(st *state) error {
		if rec, ok := st.recipes[id]; ok {
			out = copyRecipe(rec)
		}
		return nil
	})
	return out, err
}

func (r recipeRepo) GetByPresentation(_ context.Context, presentationID string) (*entity.Recipe, error) {
	var out *entity.Recipe
	err := r.v.read(func(st *state) error {
		for _, rec := range st.recipes {
			if rec.PresentationID == presentationID {
				out = copyRecipe(rec)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r recipeRepo) List(_ context.Context, limit, offset int) ([]*entity.Recipe, int, error) {
	var out []*entity.Recipe
	var total int
	err := r.v.read(func(st *state) error {
		all := make([]*entity.Recipe, 0, len(st.recipes))
		for _, rec := range st.recipes {
			all = append(all, copyRecipe(rec))
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		total = len(all)
		out = paginate(all, limit, offset)
		return nil
	})
	return out, total, err
}

// LockGraph no hace nada: las transacciones del Store ya están serializadas.
func (r recipeRepo) LockGraph(context.Context) error { return nil }

func (r recipeRepo) Graph(_ context.Context) (map[string][]string, error) {
	g := make(map[string][]string)
	err := r.v.read(func(st *state) error {
		for _, rec := range st.recipes {
			g[rec.PresentationID] = append(g[rec.PresentationID], rec.ComponentPresentationIDs()...)
		}
		return nil
	})
	return g, err
}
