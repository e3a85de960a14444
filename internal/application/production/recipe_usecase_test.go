package production_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	appinv "github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefineRecipe_CreaConNombrePorDefecto(t *testing.T) {
	f := newFixture(t)
	r := f.briquetteRecipe(t, true)

	assert.Equal(t, "Receta Briqueta 1.2 kg", r.Name)
	require.Len(t, r.Components, 2)
	assert.Equal(t, rawID, r.Components[0].ComponentPresentationID)
	assert.Equal(t, bagID, r.Components[1].ComponentPresentationID)

	got, err := f.recipes.GetByPresentation(ctx, finishedID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestDefineRecipe_SegundaRecetaEsConflicto(t *testing.T) {
	f := newFixture(t)
	f.briquetteRecipe(t, false)

	_, err := f.recipes.DefineRecipe(ctx, dto.DefineRecipeRequest{
		PresentationID: finishedID,
		Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: rawID, RequiredQuantity: dec("2"), ConsumptionKind: entity.ConsumptionRawMaterial},
		},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := f.recipes.ListRecipes(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
}

func TestDefineRecipe_Validaciones(t *testing.T) {
	f := newFixture(t)
	raw := func(q string) dto.RecipeComponentRequest {
		return dto.RecipeComponentRequest{ComponentPresentationID: rawID, RequiredQuantity: dec(q), ConsumptionKind: entity.ConsumptionRawMaterial}
	}
	cases := []struct {
		name string
		in   dto.DefineRecipeRequest
		want error
	}{
		{"sin componentes", dto.DefineRecipeRequest{PresentationID: finishedID}, domain.ErrInvalidInput},
		{"cantidad cero", dto.DefineRecipeRequest{PresentationID: finishedID, Components: []dto.RecipeComponentRequest{raw("0")}}, domain.ErrInvalidInput},
		{"componente repetido", dto.DefineRecipeRequest{PresentationID: finishedID, Components: []dto.RecipeComponentRequest{raw("1"), raw("2")}}, domain.ErrInvalidInput},
		{"consume su propio terminado", dto.DefineRecipeRequest{PresentationID: rawID, Components: []dto.RecipeComponentRequest{raw("1")}}, domain.ErrInvalidInput},
		{"tipo de consumo desconocido", dto.DefineRecipeRequest{PresentationID: finishedID, Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: rawID, RequiredQuantity: dec("1"), ConsumptionKind: "otro"},
		}}, domain.ErrInvalidInput},
		{"terminado inexistente", dto.DefineRecipeRequest{PresentationID: "no-existe", Components: []dto.RecipeComponentRequest{raw("1")}}, domain.ErrNotFound},
		{"componente inexistente", dto.DefineRecipeRequest{PresentationID: finishedID, Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: "no-existe", RequiredQuantity: dec("1"), ConsumptionKind: entity.ConsumptionInput},
		}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.recipes.DefineRecipe(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDefineRecipe_RechazaCiclo(t *testing.T) {
	f := newFixture(t)
	// saco <- briqueta, luego briqueta <- saco cerraría el ciclo
	_, err := f.recipes.DefineRecipe(ctx, dto.DefineRecipeRequest{
		PresentationID: sackID,
		Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: finishedID, RequiredQuantity: dec("20"), ConsumptionKind: entity.ConsumptionInput},
		},
	})
	require.NoError(t, err)

	_, err = f.recipes.DefineRecipe(ctx, dto.DefineRecipeRequest{
		PresentationID: finishedID,
		Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: sackID, RequiredQuantity: dec("0.05"), ConsumptionKind: entity.ConsumptionInput},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "ciclo")

	_, err = f.recipes.GetByPresentation(ctx, finishedID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestExpand_EsLineal(t *testing.T) {
	f := newFixture(t)
	f.briquetteRecipe(t, true)

	one, err := f.recipes.Expand(ctx, finishedID, dec("1"))
	require.NoError(t, err)
	many, err := f.recipes.Expand(ctx, finishedID, dec("37"))
	require.NoError(t, err)

	require.Len(t, many, len(one))
	for i := range one {
		assert.True(t, one[i].Quantity.Mul(dec("37")).Equal(many[i].Quantity), "componente %s", one[i].ComponentPresentationID)
		assert.Empty(t, many[i].LotID)
	}
	assert.True(t, dec("55.5").Equal(many[0].Quantity))
}

func TestExpand_Errores(t *testing.T) {
	f := newFixture(t)
	f.briquetteRecipe(t, false)

	_, err := f.recipes.Expand(ctx, sackID, dec("1"))
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	_, err = f.recipes.Expand(ctx, finishedID, dec("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetRecipe_NoExiste(t *testing.T) {
	f := newFixture(t)
	_, err := f.recipes.GetRecipe(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

// recordingRecipes anota el orden de LockGraph y Graph dentro de la transacción.
type recordingRecipes struct {
	repository.RecipeRepository
	mu    *sync.Mutex
	calls *[]string
}

func (r recordingRecipes) note(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.calls = append(*r.calls, call)
}

func (r recordingRecipes) LockGraph(ctx context.Context) error {
	r.note("lock")
	return r.RecipeRepository.LockGraph(ctx)
}

func (r recordingRecipes) Graph(ctx context.Context) (map[string][]string, error) {
	r.note("graph")
	return r.RecipeRepository.Graph(ctx)
}

type recordingRunner struct {
	store *memory.Store
	rec   recordingRecipes
}

func (r recordingRunner) Run(ctx context.Context, fn func(repos appinv.Repos) error) error {
	return r.store.Run(ctx, func(repos appinv.Repos) error {
		rec := r.rec
		rec.RecipeRepository = repos.Recipes
		repos.Recipes = rec
		return fn(repos)
	})
}

func TestDefineRecipe_BloqueaElGrafoAntesDeLeerlo(t *testing.T) {
	f := newFixture(t)
	var calls []string
	runner := recordingRunner{store: f.store, rec: recordingRecipes{mu: &sync.Mutex{}, calls: &calls}}
	uc := production.NewRecipeUseCase(runner, f.repos, logger.Nop())

	_, err := uc.DefineRecipe(ctx, dto.DefineRecipeRequest{
		PresentationID: finishedID,
		Components: []dto.RecipeComponentRequest{
			{ComponentPresentationID: rawID, RequiredQuantity: dec("1.5"), ConsumptionKind: entity.ConsumptionRawMaterial},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "graph"}, calls)
}

func TestDefineRecipe_ConcurrentesOpuestasSoloUnaGana(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		defs := []dto.DefineRecipeRequest{
			{PresentationID: sackID, Components: []dto.RecipeComponentRequest{
				{ComponentPresentationID: finishedID, RequiredQuantity: dec("20"), ConsumptionKind: entity.ConsumptionInput},
			}},
			{PresentationID: finishedID, Components: []dto.RecipeComponentRequest{
				{ComponentPresentationID: sackID, RequiredQuantity: dec("0.05"), ConsumptionKind: entity.ConsumptionInput},
			}},
		}
		errs := make([]error, len(defs))
		var wg sync.WaitGroup
		for j, in := range defs {
			wg.Add(1)
			go func(j int, in dto.DefineRecipeRequest) {
				defer wg.Done()
				_, errs[j] = f.recipes.DefineRecipe(ctx, in)
			}(j, in)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		}
		require.Equal(t, 1, ok, "exactamente una de las dos recetas opuestas debe quedar")
		list, err := f.recipes.ListRecipes(ctx, dto.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, list.Page.Total)
	}
}
