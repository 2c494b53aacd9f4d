package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-ledger/internal/application/dto"
	"github.com/jhoicas/almacen-ledger/internal/application/inventory"
	"github.com/jhoicas/almacen-ledger/pkg/validator"
)

// InventoryHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type InventoryHandler struct {
	record    *inventory.RecordMovementUseCase
	stock     *inventory.StockUseCase
	reconcile *inventory.ReconcileUseCase
	valuation *inventory.ValuationUseCase
	log       zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	record *inventory.RecordMovementUseCase,
	stock *inventory.StockUseCase,
	reconcile *inventory.ReconcileUseCase,
	valuation *inventory.ValuationUseCase,
	log zerolog.Logger,
) *InventoryHandler {
	return &InventoryHandler{record: record, stock: stock, reconcile: reconcile, valuation: valuation, log: log}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento (entrada, salida o devolución)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "material_id, type, quantity, unit_price (entradas), contraparte"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validator.Validate(&in); err != nil {
		fields := validator.FormatValidationErrors(err)
		details := make(map[string]any, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
	}

	mov, err := h.record.RecordFromRequest(c.UserContext(), ownerID, GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// GetStock godoc
// @Summary      Stock actual de un material
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	materialID := c.Params("id")
	stock, err := h.stock.GetCurrentStock(c.UserContext(), ownerID, materialID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResponse{MaterialID: materialID, CurrentStock: stock})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un material (orden de reproducción)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del material"
// @Param        limit   query  int     false  "máximo 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/materials/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	page.DefaultPage()
	if err := validator.Validate(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "limit debe estar entre 1 y 100"})
	}

	history, err := h.stock.ListMovements(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}

	start, end, meta := page.Window(len(history))
	items := make([]dto.MovementResponse, 0, end-start)
	for _, m := range history[start:end] {
		items = append(items, inventory.ToMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: meta})
}

// Reconcile godoc
// @Summary      Reconciliar stock contra el historial (admin)
// @Description  Recalcula current_stock desde los movimientos y corrige diferencias.
//
//	Sin material_id recorre todos los materiales del propietario.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        material_id  query  string  false  "Reconciliar solo este material"
// @Success      200  {object}  dto.ReconciliationReportDTO
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	var materialID *string
	if id := c.Query("material_id"); id != "" {
		materialID = &id
	}
	report, err := h.reconcile.Reconcile(c.UserContext(), ownerID, materialID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report.ToReportDTO())
}

// GetValuation godoc
// @Summary      Valorización financiera por lotes de precio
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "Búsqueda por nombre (sin tildes ni mayúsculas)"
// @Param        category_id  query  string  false  "Filtrar por categoría"
// @Success      200  {object}  dto.FinancialValuationDTO
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) GetValuation(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	report, err := h.valuation.Valuate(c.UserContext(), ownerID, inventory.ValuationFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report.ToValuationDTO())
}
