package production

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	appinv "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/recipe"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// RecipeUseCase alta y consulta de recetas (listas de materiales).
type RecipeUseCase struct {
	txRunner appinv.TxRunner
	repos    appinv.Repos
	log      *logger.Logger
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(txRunner appinv.TxRunner, repos appinv.Repos, log *logger.Logger) *RecipeUseCase {
	return &RecipeUseCase{txRunner: txRunner, repos: repos, log: log.Named("recipes")}
}

// DefineRecipe crea la receta de un terminado. Falla con Conflict si ya existe una
// para la presentación y con InvalidInput si la lista está vacía o crea un ciclo.
func (uc *RecipeUseCase) DefineRecipe(ctx context.Context, in dto.DefineRecipeRequest) (*dto.RecipeResponse, error) {
	now := time.Now().UTC()
	r := &entity.Recipe{
		ID:             uuid.New().String(),
		PresentationID: in.PresentationID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i, c := range in.Components {
		r.Components = append(r.Components, entity.RecipeComponent{
			ID:                      uuid.New().String(),
			RecipeID:                r.ID,
			ComponentPresentationID: c.ComponentPresentationID,
			RequiredQuantity:        c.RequiredQuantity,
			ConsumptionKind:         c.ConsumptionKind,
			Position:                i + 1,
		})
	}
	if err := recipe.Validate(r); err != nil {
		return nil, err
	}

	err := uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		// El chequeo de ciclos lee el grafo completo: las altas van de a una.
		if err := repos.Recipes.LockGraph(ctx); err != nil {
			return err
		}
		finished, err := repos.Presentations.GetByID(ctx, r.PresentationID)
		if err != nil {
			return err
		}
		if finished == nil {
			return domain.Errorf(domain.ErrNotFound, "presentación %s", r.PresentationID)
		}
		if r.Name == "" {
			r.Name = "Receta " + finished.Name
		}
		for _, c := range r.Components {
			p, err := repos.Presentations.GetByID(ctx, c.ComponentPresentationID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.Errorf(domain.ErrNotFound, "presentación componente %s", c.ComponentPresentationID)
			}
		}
		existing, err := repos.Recipes.GetByPresentation(ctx, r.PresentationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Errorf(domain.ErrConflict, "ya existe una receta para la presentación %s", r.PresentationID)
		}
		graph, err := repos.Recipes.Graph(ctx)
		if err != nil {
			return err
		}
		if cycle := recipe.FindCycle(graph, r.PresentationID, r.ComponentPresentationIDs()); cycle != nil {
			return domain.Errorf(domain.ErrInvalidInput, "la receta crea un ciclo: %s", strings.Join(cycle, " -> "))
		}
		return repos.Recipes.Create(ctx, r)
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("presentation_id", r.PresentationID).Msg("receta rechazada")
		return nil, err
	}
	uc.log.Info().Str("recipe_id", r.ID).Str("presentation_id", r.PresentationID).
		Int("components", len(r.Components)).Msg("receta creada")
	out := toRecipeResponse(r)
	return &out, nil
}

// GetRecipe obtiene una receta por ID.
func (uc *RecipeUseCase) GetRecipe(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	r, err := uc.repos.Recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.Errorf(domain.ErrRecipeNotFound, "receta %s", id)
	}
	out := toRecipeResponse(r)
	return &out, nil
}

// GetByPresentation obtiene la receta del terminado.
func (uc *RecipeUseCase) GetByPresentation(ctx context.Context, presentationID string) (*dto.RecipeResponse, error) {
	r, err := uc.repos.Recipes.GetByPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.Errorf(domain.ErrRecipeNotFound, "presentación %s", presentationID)
	}
	out := toRecipeResponse(r)
	return &out, nil
}

// ListRecipes lista recetas paginadas.
func (uc *RecipeUseCase) ListRecipes(ctx context.Context, page dto.PageRequest) (*dto.RecipeListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.repos.Recipes.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toRecipeResponse(r))
	}
	return &dto.RecipeListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Expand devuelve los requerimientos para producir units del terminado, sin elegir lotes.
func (uc *RecipeUseCase) Expand(ctx context.Context, presentationID string, units decimal.Decimal) ([]dto.RequirementResponse, error) {
	r, err := uc.repos.Recipes.GetByPresentation(ctx, presentationID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.Errorf(domain.ErrRecipeNotFound, "presentación %s", presentationID)
	}
	reqs, err := recipe.Expand(r, units)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RequirementResponse, 0, len(reqs))
	for _, q := range reqs {
		out = append(out, toRequirementResponse(q))
	}
	return out, nil
}

func toRecipeResponse(r *entity.Recipe) dto.RecipeResponse {
	out := dto.RecipeResponse{
		ID:             r.ID,
		PresentationID: r.PresentationID,
		Name:           r.Name,
		Description:    r.Description,
		Components:     make([]dto.RecipeComponentResponse, 0, len(r.Components)),
		CreatedAt:      r.CreatedAt,
	}
	for _, c := range r.Components {
		out.Components = append(out.Components, dto.RecipeComponentResponse{
			ID:                      c.ID,
			ComponentPresentationID: c.ComponentPresentationID,
			RequiredQuantity:        c.RequiredQuantity,
			ConsumptionKind:         c.ConsumptionKind,
		})
	}
	return out
}

func toRequirementResponse(q recipe.Requirement) dto.RequirementResponse {
	return dto.RequirementResponse{
		RecipeComponentID:       q.Component.ID,
		ComponentPresentationID: q.Component.ComponentPresentationID,
		ConsumptionKind:         q.Component.ConsumptionKind,
		Quantity:                q.Quantity,
		LotID:                   q.LotID,
	}
}
