package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/production"
	"github.com/shopspring/decimal"
)

// ProductionHandler maneja recetas y ensamblajes (protegido).
type ProductionHandler struct {
	recipes  *production.RecipeUseCase
	assembly *production.AssemblyUseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(recipes *production.RecipeUseCase, assembly *production.AssemblyUseCase) *ProductionHandler {
	return &ProductionHandler{recipes: recipes, assembly: assembly}
}

// Assemble godoc
// @Summary      Ensamblaje de producción
// @Description  Consume materia prima (por lote) e insumos según las recetas de cada salida y
// @Description  acredita los terminados. Las cantidades se derivan de las recetas.
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AssemblyRequest  true  "warehouse_id, outputs, raw_material_inputs"
// @Success      201   {object}  dto.AssemblyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/production/assemblies [post]
func (h *ProductionHandler) Assemble(c *fiber.Ctx) error {
	var in dto.AssemblyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.assembly.AssembleProduction(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Produce godoc
// @Summary      Fabricación por receta
// @Tags         production
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProductionRunRequest  true  "warehouse_id, presentation_id, units, selected_lots"
// @Success      201   {object}  dto.AssemblyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/production/runs [post]
func (h *ProductionHandler) Produce(c *fiber.Ctx) error {
	var in dto.ProductionRunRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.assembly.ProduceFromRecipe(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DefineRecipe godoc
// @Summary      Definir receta
// @Description  Una receta por presentación terminada; se rechazan ciclos.
// @Tags         recipes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.DefineRecipeRequest  true  "presentation_id, components"
// @Success      201   {object}  dto.RecipeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/recipes [post]
func (h *ProductionHandler) DefineRecipe(c *fiber.Ctx) error {
	var in dto.DefineRecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.recipes.DefineRecipe(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListRecipes godoc
// @Summary      Listar recetas
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        presentation_id  query     string  false  "Receta de una presentación"
// @Param        limit            query     int     false  "Límite"
// @Param        offset           query     int     false  "Offset"
// @Success      200  {object}  dto.RecipeListResponse
// @Router       /api/recipes [get]
func (h *ProductionHandler) ListRecipes(c *fiber.Ctx) error {
	if id := c.Query("presentation_id"); id != "" {
		r, err := h.recipes.GetByPresentation(c.Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.RecipeListResponse{
			Items: []dto.RecipeResponse{*r},
			Page:  dto.PageResponse{Limit: 1, Total: 1},
		})
	}
	out, err := h.recipes.ListRecipes(c.Context(), page(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetRecipe godoc
// @Summary      Obtener receta
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la receta"
// @Success      200  {object}  dto.RecipeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [get]
func (h *ProductionHandler) GetRecipe(c *fiber.Ctx) error {
	out, err := h.recipes.GetRecipe(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Requirements godoc
// @Summary      Expandir receta
// @Description  Requerimientos para producir units de la presentación, sin elegir lotes.
// @Tags         recipes
// @Security     Bearer
// @Produce      json
// @Param        presentation_id  path      string  true  "Presentación terminada"
// @Param        units            query     string  true  "Unidades a producir"
// @Success      200  {array}   dto.RequirementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/requirements/{presentation_id} [get]
func (h *ProductionHandler) Requirements(c *fiber.Ctx) error {
	units, err := decimal.NewFromString(c.Query("units"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "units debe ser numérico"})
	}
	out, err := h.recipes.Expand(c.Context(), c.Params("presentation_id"), units)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
