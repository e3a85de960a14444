package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// recipeGraphLockKey clave del advisory lock de transacción que protege el grafo de recetas.
const recipeGraphLockKey int64 = 0x5245434950 // "RECIP"

// RecipeRepo recetas y componentes sobre PostgreSQL (usable con pool o tx).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Create persiste la receta con sus componentes. Debe llamarse dentro de una transacción.
func (r *RecipeRepo) Create(ctx context.Context, rec *entity.Recipe) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipes (id, presentation_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.PresentationID, rec.Name, nullable(rec.Description), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Errorf(domain.ErrConflict, "ya existe una receta para la presentación %s", rec.PresentationID)
		}
		return queryErr("insert recipe", err)
	}
	for _, c := range rec.Components {
		_, err := r.q.Exec(ctx, `
			INSERT INTO recipe_components (id, recipe_id, component_presentation_id, required_quantity, consumption_kind, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, rec.ID, c.ComponentPresentationID, c.RequiredQuantity, c.ConsumptionKind, c.Position)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.Errorf(domain.ErrInvalidInput, "componente repetido: %s", c.ComponentPresentationID)
			}
			return queryErr("insert recipe component", err)
		}
	}
	return nil
}

func (r *RecipeRepo) getOne(ctx context.Context, cond string, arg string) (*entity.Recipe, error) {
	var rec entity.Recipe
	var description *string
	err := r.q.QueryRow(ctx, `
		SELECT id, presentation_id, name, description, created_at, updated_at
		FROM recipes WHERE `+cond, arg).Scan(
		&rec.ID, &rec.PresentationID, &rec.Name, &description, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("get recipe", err)
	}
	rec.Description = deref(description)
	if err := r.loadComponents(ctx, []*entity.Recipe{&rec}); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID obtiene una receta con sus componentes.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByPresentation obtiene la receta del terminado.
func (r *RecipeRepo) GetByPresentation(ctx context.Context, presentationID string) (*entity.Recipe, error) {
	return r.getOne(ctx, "presentation_id = $1", presentationID)
}

// List lista recetas paginadas con sus componentes.
func (r *RecipeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Recipe, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM recipes`).Scan(&total); err != nil {
		return nil, 0, queryErr("count recipes", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, presentation_id, name, description, created_at, updated_at
		FROM recipes ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, queryErr("list recipes", err)
	}
	defer rows.Close()
	var list []*entity.Recipe
	for rows.Next() {
		var rec entity.Recipe
		var description *string
		if err := rows.Scan(&rec.ID, &rec.PresentationID, &rec.Name, &description, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, queryErr("scan recipe", err)
		}
		rec.Description = deref(description)
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()
	if err := r.loadComponents(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *RecipeRepo) loadComponents(ctx context.Context, recipes []*entity.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(recipes))
	byID := make(map[string]*entity.Recipe, len(recipes))
	for _, rec := range recipes {
		ids = append(ids, rec.ID)
		byID[rec.ID] = rec
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, recipe_id, component_presentation_id, required_quantity, consumption_kind, position
		FROM recipe_components WHERE recipe_id = ANY($1::uuid[]) ORDER BY recipe_id, position`, ids)
	if err != nil {
		return queryErr("list recipe components", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c entity.RecipeComponent
		if err := rows.Scan(&c.ID, &c.RecipeID, &c.ComponentPresentationID, &c.RequiredQuantity, &c.ConsumptionKind, &c.Position); err != nil {
			return queryErr("scan recipe component", err)
		}
		if rec, ok := byID[c.RecipeID]; ok {
			rec.Components = append(rec.Components, c)
		}
	}
	return rows.Err()
}

// LockGraph toma pg_advisory_xact_lock; se libera con el Commit o Rollback.
func (r *RecipeRepo) LockGraph(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, recipeGraphLockKey); err != nil {
		return queryErr("lock recipe graph", err)
	}
	return nil
}

// Graph devuelve terminado -> presentaciones componentes de todas las recetas.
func (r *RecipeRepo) Graph(ctx context.Context) (map[string][]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT r.presentation_id, c.component_presentation_id
		FROM recipes r JOIN recipe_components c ON c.recipe_id = r.id`)
	if err != nil {
		return nil, queryErr("recipe graph", err)
	}
	defer rows.Close()
	g := make(map[string][]string)
	for rows.Next() {
		var finished, component string
		if err := rows.Scan(&finished, &component); err != nil {
			return nil, queryErr("scan recipe graph", err)
		}
		g[finished] = append(g[finished], component)
	}
	return g, rows.Err()
}
