package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// LotHandler maneja las peticiones HTTP del libro de lotes (protegido).
type LotHandler struct {
	uc *inventory.LotUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *inventory.LotUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar lote
// @Description  Recepción de materia prima o lote derivado (origin_lot_id). Registra una entrada de peso.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateLotRequest  true  "product_id, initial_weight (kg), code opcional"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateLot(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetLot(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar lotes
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        product_id     query     string  false  "Filtrar por producto"
// @Param        origin_lot_id  query     string  false  "Lotes derivados de otro"
// @Param        active         query     bool    false  "Solo activos / inactivos"
// @Param        limit          query     int     false  "Límite"
// @Param        offset         query     int     false  "Offset"
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots [get]
func (h *LotHandler) List(c *fiber.Ctx) error {
	p := page(c)
	f := repository.LotFilter{
		ProductID:   c.Query("product_id"),
		OriginLotID: c.Query("origin_lot_id"),
		Limit:       p.Limit,
		Offset:      p.Offset,
	}
	if c.Query("active") != "" {
		active := c.QueryBool("active")
		f.IsActive = &active
	}
	out, err := h.uc.ListLots(c.Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetActive godoc
// @Summary      Activar o desactivar lote
// @Description  Un lote inactivo no puede consumirse en ensamblajes.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID del lote"
// @Param        body  body      dto.SetLotActiveRequest  true  "active"
// @Success      200   {object}  dto.LotResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/active [patch]
func (h *LotHandler) SetActive(c *fiber.Ctx) error {
	var in dto.SetLotActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetActive(c.Context(), c.Params("id"), in.Active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RegisterWaste godoc
// @Summary      Registrar merma
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del lote"
// @Param        body  body      dto.WeightAdjustmentRequest  true  "amount (kg), reason"
// @Success      201   {object}  dto.LotMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/lots/{id}/waste [post]
func (h *LotHandler) RegisterWaste(c *fiber.Ctx) error {
	return h.weight(c, h.uc.RegisterWaste)
}

// Debit godoc
// @Summary      Descontar peso de un lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del lote"
// @Param        body  body      dto.WeightAdjustmentRequest  true  "amount (kg), reason"
// @Success      201   {object}  dto.LotMutationResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Router       /api/lots/{id}/debit [post]
func (h *LotHandler) Debit(c *fiber.Ctx) error {
	return h.weight(c, h.uc.DebitWeight)
}

// Credit godoc
// @Summary      Acreditar peso a un lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del lote"
// @Param        body  body      dto.WeightAdjustmentRequest  true  "amount (kg), reason"
// @Success      201   {object}  dto.LotMutationResponse
// @Router       /api/lots/{id}/credit [post]
func (h *LotHandler) Credit(c *fiber.Ctx) error {
	return h.weight(c, h.uc.CreditWeight)
}

type weightFn func(ctx context.Context, actor, lotID string, in dto.WeightAdjustmentRequest) (*dto.LotMutationResponse, error)

func (h *LotHandler) weight(c *fiber.Ctx, fn weightFn) error {
	var in dto.WeightAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := fn(c.Context(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
