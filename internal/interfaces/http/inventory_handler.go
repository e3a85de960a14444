package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de inventario, transferencias y movimientos (protegido).
type InventoryHandler struct {
	stock     *inventory.StockUseCase
	transfers *inventory.TransferUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, transfers *inventory.TransferUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, transfers: transfers}
}

// RegisterInitialStock godoc
// @Summary      Registrar inventario inicial
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.InitialStockRequest  true  "presentation_id, warehouse_id, lot_id opcional, quantity, min_stock"
// @Success      201   {object}  dto.InventoryMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) RegisterInitialStock(c *fiber.Ctx) error {
	var in dto.InitialStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.RegisterInitialStock(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Consultar inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        presentation_id  query     string  false  "Presentación"
// @Param        warehouse_id     query     string  false  "Almacén"
// @Param        lot_id           query     string  false  "Lote ('-' = sin lote)"
// @Param        low_stock        query     bool    false  "Solo registros en o bajo el mínimo"
// @Param        limit            query     int     false  "Límite"
// @Param        offset           query     int     false  "Offset"
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.stock.GetInventory(c.Context(), dto.InventoryQuery{
		PresentationID: c.Query("presentation_id"),
		WarehouseID:    c.Query("warehouse_id"),
		LotID:          c.Query("lot_id"),
		LowStock:       c.QueryBool("low_stock"),
		PageRequest:    page(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Debit godoc
// @Summary      Descontar unidades
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        operation_kind  query     string                     false  "sale, adjustment, waste... (por defecto adjustment)"
// @Param        body            body      dto.UnitAdjustmentRequest  true  "clave y cantidad"
// @Success      201  {object}  dto.InventoryMutationResponse
// @Failure      409  {object}  dto.StockErrorResponse
// @Router       /api/inventory/debit [post]
func (h *InventoryHandler) Debit(c *fiber.Ctx) error {
	var in dto.UnitAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.DebitUnits(c.Context(), GetActor(c), c.Query("operation_kind"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Credit godoc
// @Summary      Acreditar unidades
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        operation_kind  query     string                     false  "por defecto adjustment"
// @Param        body            body      dto.UnitAdjustmentRequest  true  "clave y cantidad"
// @Success      201  {object}  dto.InventoryMutationResponse
// @Router       /api/inventory/credit [post]
func (h *InventoryHandler) Credit(c *fiber.Ctx) error {
	var in dto.UnitAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.CreditUnits(c.Context(), GetActor(c), c.Query("operation_kind"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Transferir stock entre almacenes
// @Description  Todas las líneas se verifican contra el origen antes de mover nada.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "source_warehouse_id, destination_warehouse_id, lines"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.transfers.TransferStock(c.Context(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Movements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        direction        query     string  false  "entry | exit"
// @Param        operation_kind   query     string  false  "production, sale, adjustment, waste, transfer, assembly"
// @Param        presentation_id  query     string  false  "Presentación"
// @Param        lot_id           query     string  false  "Lote"
// @Param        warehouse_id     query     string  false  "Almacén"
// @Param        correlation_id   query     string  false  "Operación"
// @Param        from             query     string  false  "YYYY-MM-DD"
// @Param        to               query     string  false  "YYYY-MM-DD (inclusive)"
// @Param        limit            query     int     false  "Límite"
// @Param        offset           query     int     false  "Offset"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	out, err := h.stock.GetMovements(c.Context(), dto.MovementQuery{
		Direction:      c.Query("direction"),
		OperationKind:  c.Query("operation_kind"),
		PresentationID: c.Query("presentation_id"),
		LotID:          c.Query("lot_id"),
		WarehouseID:    c.Query("warehouse_id"),
		CorrelationID:  c.Query("correlation_id"),
		From:           c.Query("from"),
		To:             c.Query("to"),
		PageRequest:    page(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar el libro
// @Description  Reconstruye lotes e inventario desde los movimientos y reporta diferencias.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.stock.Reconcile(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
