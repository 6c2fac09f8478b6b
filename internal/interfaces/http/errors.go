package http

import (
	"errors"
	"io/fs"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-desktop/internal/application/dto"
	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// errorMapping de tipo de error a respuesta. El orden importa: los errores envueltos
// (SaveError con ErrNoPath, LoadError con MalformedRow) se resuelven por su causa.
var errorMapping = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrNoCatalog, fiber.StatusConflict, "NO_CATALOG", "no hay catálogo abierto"},
	{domain.ErrNoPath, fiber.StatusBadRequest, "NO_PATH", "indique la ruta del libro"},
	{domain.ErrMalformedRow, fiber.StatusUnprocessableEntity, "MALFORMED_ROW", ""},
	{fs.ErrNotExist, fiber.StatusNotFound, "FILE_NOT_FOUND", "archivo no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "ítem no encontrado"},
	{domain.ErrDuplicateSKU, fiber.StatusConflict, "DUPLICATE_SKU", "SKU ya existe en el catálogo"},
	{domain.ErrHasHistory, fiber.StatusConflict, "HAS_HISTORY", "el ítem tiene movimientos registrados"},
	{domain.ErrInsufficientStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", ""},
	{domain.ErrLoad, fiber.StatusInternalServerError, "LOAD_ERROR", ""},
	{domain.ErrSave, fiber.StatusInternalServerError, "SAVE_ERROR", ""},
}

// respondError traduce un error del motor a su respuesta JSON.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	resp := dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
	status := fiber.StatusInternalServerError
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			status, resp.Code = m.status, m.code
			if m.message != "" {
				resp.Message = m.message
			}
			break
		}
	}

	var batchErr *domain.BatchError
	if errors.As(err, &batchErr) {
		idx := batchErr.Index
		resp.Index = &idx
		resp.Message = err.Error()
	}
	var rowErr *domain.MalformedRowError
	if errors.As(err, &rowErr) {
		resp.Sheet, resp.Row, resp.Field = rowErr.Sheet, rowErr.Row, rowErr.Field
	}

	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error en petición")
	} else {
		log.Warn().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("petición rechazada")
	}
	return c.Status(status).JSON(resp)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
