package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-desktop/internal/application/dto"
	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// SessionHandler maneja el ciclo de vida del libro y las exportaciones.
type SessionHandler struct {
	lifecycle session.Lifecycle
	exports   session.Exports
	log       *logger.Logger
}

// NewSessionHandler construye el handler.
func NewSessionHandler(lifecycle session.Lifecycle, exports session.Exports, log *logger.Logger) *SessionHandler {
	return &SessionHandler{lifecycle: lifecycle, exports: exports, log: log}
}

// State godoc
// @Summary      Estado de la sesión
// @Tags         session
// @Produce      json
// @Success      200  {object}  session.State
// @Router       /api/session [get]
func (h *SessionHandler) State(c *fiber.Ctx) error {
	return c.JSON(h.lifecycle.State())
}

// New godoc
// @Summary      Catálogo nuevo sin ruta
// @Tags         session
// @Produce      json
// @Success      200  {object}  session.State
// @Router       /api/session/new [post]
func (h *SessionHandler) New(c *fiber.Ctx) error {
	if err := h.lifecycle.New(); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.lifecycle.State())
}

// Open godoc
// @Summary      Abrir libro
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PathRequest  true  "Ruta del libro"
// @Success      200   {object}  session.State
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/session/open [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var in dto.PathRequest
	if err := c.BodyParser(&in); err != nil || in.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "path es requerido"})
	}
	if err := h.lifecycle.Open(c.UserContext(), in.Path); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.lifecycle.State())
}

// Save godoc
// @Summary      Guardar libro
// @Description  Sin path guarda en la ruta actual.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PathRequest  false  "Ruta destino"
// @Success      200   {object}  session.State
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/session/save [post]
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	var in dto.PathRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	if err := h.lifecycle.Save(c.UserContext(), in.Path); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(h.lifecycle.State())
}

// Close godoc
// @Summary      Cerrar libro (descarta cambios sin guardar)
// @Tags         session
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/session/close [post]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.lifecycle.Close(); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export godoc
// @Summary      Exportar una vista a PDF o XLSX
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExportRequest  true  "format, view, query, title, path"
// @Success      201   {object}  dto.ExportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/session/export [post]
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	var in dto.ExportRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	format, err := session.ParseExportFormat(in.Format)
	if err != nil {
		return respondError(c, h.log, err)
	}
	view, err := session.ParseViewKind(in.View)
	if err != nil {
		return respondError(c, h.log, err)
	}
	path, err := h.exports.Export(c.UserContext(), session.ExportRequest{
		Format: format,
		View:   view,
		Query:  in.Query,
		Title:  in.Title,
		Path:   in.Path,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ExportResponse{Path: path})
}
