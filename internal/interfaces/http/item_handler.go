package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-desktop/internal/application/dto"
	"github.com/jhoicas/inventario-desktop/internal/application/query"
	"github.com/jhoicas/inventario-desktop/internal/application/session"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
	"github.com/jhoicas/inventario-desktop/pkg/logger"
)

// ItemHandler maneja el CRUD de ítems y sus listados.
type ItemHandler struct {
	items   session.Items
	queries session.Queries
	log     *logger.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(items session.Items, queries session.Queries, log *logger.Logger) *ItemHandler {
	return &ItemHandler{items: items, queries: queries, log: log}
}

// Create godoc
// @Summary      Crear ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "Datos del ítem"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	it, err := h.items.CreateItem(in.ToInput())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewItemResponse(it))
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	it, err := h.items.GetItem(c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewItemResponse(it))
}

// Update godoc
// @Summary      Actualizar campos de un ítem
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ítem"
// @Param        body  body  dto.UpdateItemRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [patch]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	it, err := h.items.UpdateItem(c.Params("id"), in.ToPatch())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewItemResponse(it))
}

// Delete godoc
// @Summary      Eliminar ítem (solo sin movimientos)
// @Tags         items
// @Param        id   path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *ItemHandler) Delete(c *fiber.Ctx) error {
	if err := h.items.RemoveItem(c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar ítems
// @Description  q filtra por nombre o SKU; sort/dir ordenan el resultado (estable).
// @Tags         items
// @Produce      json
// @Param        q     query  string  false  "Texto a buscar"
// @Param        sort  query  string  false  "id, name, sku, quantity, unitPrice, lowStockThreshold, lastModified"
// @Param        dir   query  string  false  "asc o desc"  default(asc)
// @Success      200   {object}  dto.ItemListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	view, err := h.queries.View()
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := view.Search(c.Query("q"))
	if sort := c.Query("sort"); sort != "" {
		field, err := query.ParseSortField(sort)
		if err != nil {
			return respondError(c, h.log, err)
		}
		dir, err := query.ParseDirection(c.Query("dir"))
		if err != nil {
			return respondError(c, h.log, err)
		}
		// Los resultados de la búsqueda conservan el orden del catálogo, así que el
		// orden estable se mantiene al reordenarlos.
		items, err = query.NewView(inventory.Snapshot{Items: items}).SortBy(field, dir)
		if err != nil {
			return respondError(c, h.log, err)
		}
	}
	return c.JSON(dto.NewItemListResponse(items))
}

// LowStock godoc
// @Summary      Ítems en bajo stock
// @Tags         items
// @Produce      json
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items/low-stock [get]
func (h *ItemHandler) LowStock(c *fiber.Ctx) error {
	view, err := h.queries.View()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewItemListResponse(view.LowStockItems()))
}

// Suggest godoc
// @Summary      Autocompletar nombres
// @Tags         items
// @Produce      json
// @Param        prefix  query  string  true   "Prefijo"
// @Param        limit   query  int     false  "Máximo de resultados"  default(10)
// @Success      200     {object}  dto.SuggestResponse
// @Router       /api/items/suggest [get]
func (h *ItemHandler) Suggest(c *fiber.Ctx) error {
	view, err := h.queries.View()
	if err != nil {
		return respondError(c, h.log, err)
	}
	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return c.JSON(dto.SuggestResponse{Names: view.Suggest(c.Query("prefix"), limit)})
}

// Summary godoc
// @Summary      Totales del catálogo
// @Tags         items
// @Produce      json
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/summary [get]
func (h *ItemHandler) Summary(c *fiber.Ctx) error {
	view, err := h.queries.View()
	if err != nil {
		return respondError(c, h.log, err)
	}
	s := view.Summary()
	return c.JSON(dto.SummaryResponse{
		Items:          s.Items,
		Units:          s.Units,
		StockValue:     s.StockValue,
		LowStock:       s.LowStock,
		OutOfStock:     s.OutOfStock,
		Movements:      s.Movements,
		LastMovementAt: s.LastMovementAt,
	})
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Ítems en bajo stock con la cantidad sugerida de pedido, priorizados por salidas
//
//	recientes y déficit bajo el umbral.
//
// @Tags         items
// @Produce      json
// @Param        days  query  int  false  "Ventana de salidas en días"  default(90)
// @Success      200   {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/items/replenishment [get]
func (h *ItemHandler) Replenishment(c *fiber.Ctx) error {
	view, err := h.queries.View()
	if err != nil {
		return respondError(c, h.log, err)
	}
	days := c.QueryInt("days", 90)
	if days <= 0 {
		days = 90
	}
	suggestions := view.Replenishment(time.Duration(days)*24*time.Hour, time.Now().UTC())
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ItemID:             s.Item.ID,
			SKU:                s.Item.SKU,
			Name:               s.Item.Name,
			CurrentStock:       s.Item.Quantity,
			LowStockThreshold:  s.Item.LowStockThreshold,
			IdealStock:         s.IdealStock,
			SuggestedOrderQty:  s.SuggestedOrderQty,
			EstimatedOrderCost: s.EstimatedOrderCost,
			UnitsIssued:        s.UnitsIssued,
			Priority:           s.Priority,
		})
	}
	return c.JSON(out)
}
