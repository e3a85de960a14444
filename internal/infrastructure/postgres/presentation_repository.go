package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.PresentationRepository = (*PresentationRepo)(nil)

// PresentationRepo presentaciones del catálogo sobre PostgreSQL.
type PresentationRepo struct {
	q Querier
}

// NewPresentationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPresentationRepository(q Querier) *PresentationRepo {
	return &PresentationRepo{q: q}
}

// Create persiste una presentación.
func (r *PresentationRepo) Create(ctx context.Context, p *entity.Presentation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO presentations (id, product_id, name, kind, weight_per_unit, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ProductID, p.Name, p.Kind, p.WeightPerUnit, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return queryErr("insert presentation", err)
	}
	return nil
}

// GetByID obtiene una presentación por ID.
func (r *PresentationRepo) GetByID(ctx context.Context, id string) (*entity.Presentation, error) {
	var p entity.Presentation
	err := r.q.QueryRow(ctx, `
		SELECT id, product_id, name, kind, weight_per_unit, active, created_at, updated_at
		FROM presentations WHERE id = $1`, id).Scan(
		&p.ID, &p.ProductID, &p.Name, &p.Kind, &p.WeightPerUnit, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, queryErr("get presentation", err)
	}
	return &p, nil
}
