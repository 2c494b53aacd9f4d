package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/almacen-ledger/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero.
type DashboardHandler struct {
	uc  *appanalytics.DashboardUseCase
	log zerolog.Logger
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{uc: uc, log: log}
}

// GetSummary devuelve el resumen del día.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (total_materials, entries_today, exits_today,
// returns_today, critical_items, low_stock_materials[], date_label).
// No requiere parámetros; "hoy" es la fecha del servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	ownerID := GetOwnerID(c)
	if ownerID == "" {
		return unauthorized(c)
	}
	summary, err := h.uc.GetSummary(c.UserContext(), ownerID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(summary)
}
