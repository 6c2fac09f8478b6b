package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-desktop/internal/application/dto"
	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// MovementHandler maneja los movimientos de stock.
type MovementHandler struct {
	movements session.Movements
	log       *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(movements session.Movements, log *logger.Logger) *MovementHandler {
	return &MovementHandler{movements: movements, log: log}
}

// Apply godoc
// @Summary      Registrar movimiento
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_id, delta (con signo), reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Apply(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	req, err := in.ToEntity()
	if err != nil {
		return respondError(c, h.log, err)
	}
	rec, err := h.movements.ApplyMovement(req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(rec))
}

// ApplyBatch godoc
// @Summary      Registrar lote de movimientos (todo o nada)
// @Description  Si una entrada falla no se aplica ninguna; index indica la entrada fallida.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "Movimientos"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/movements/batch [post]
func (h *MovementHandler) ApplyBatch(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	reqs := make([]entity.MovementRequest, 0, len(in.Movements))
	for i, m := range in.Movements {
		req, err := m.ToEntity()
		if err != nil {
			return respondError(c, h.log, &domain.BatchError{Index: i, ItemID: m.ItemID, Err: err})
		}
		reqs = append(reqs, req)
	}
	recs, err := h.movements.ApplyBatch(reqs)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementListResponse(recs))
}

// History godoc
// @Summary      Historial de un ítem
// @Tags         movements
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	recs, err := h.movements.MovementsFor(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewMovementListResponse(recs))
}
