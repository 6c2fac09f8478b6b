package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// CreateItemRequest entrada para crear un ítem. La cantidad inicial es 0.
type CreateItemRequest struct {
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// ToInput convierte al tipo de entrada del catálogo.
func (r CreateItemRequest) ToInput() entity.NewItemInput {
	return entity.NewItemInput{
		Name:              r.Name,
		SKU:               r.SKU,
		UnitPrice:         r.UnitPrice,
		LowStockThreshold: r.LowStockThreshold,
	}
}

// UpdateItemRequest patch parcial; los campos ausentes no cambian. La cantidad solo cambia vía movimientos.
type UpdateItemRequest struct {
	Name              *string          `json:"name"`
	SKU               *string          `json:"sku"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
}

// ToPatch convierte al patch del catálogo.
func (r UpdateItemRequest) ToPatch() entity.ItemPatch {
	return entity.ItemPatch{
		Name:              r.Name,
		SKU:               r.SKU,
		UnitPrice:         r.UnitPrice,
		LowStockThreshold: r.LowStockThreshold,
	}
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	StockValue        decimal.Decimal `json:"stock_value"`
	LastModified      time.Time       `json:"last_modified"`
}

// ItemListResponse lista de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// NewItemResponse mapea un ítem del catálogo.
func NewItemResponse(it entity.Item) ItemResponse {
	return ItemResponse{
		ID:                it.ID,
		Name:              it.Name,
		SKU:               it.SKU,
		Quantity:          it.Quantity,
		UnitPrice:         it.UnitPrice,
		LowStockThreshold: it.LowStockThreshold,
		LowStock:          it.IsLowStock(),
		StockValue:        it.StockValue(),
		LastModified:      it.LastModified,
	}
}

// NewItemListResponse mapea una lista conservando el orden.
func NewItemListResponse(items []entity.Item) ItemListResponse {
	out := ItemListResponse{Items: make([]ItemResponse, 0, len(items)), Total: len(items)}
	for _, it := range items {
		out.Items = append(out.Items, NewItemResponse(it))
	}
	return out
}

// SuggestResponse nombres para autocompletar.
type SuggestResponse struct {
	Names []string `json:"names"`
}

// SummaryResponse totales del tablero.
type SummaryResponse struct {
	Items          int             `json:"items"`
	Units          int             `json:"units"`
	StockValue     decimal.Decimal `json:"stock_value"`
	LowStock       int             `json:"low_stock"`
	OutOfStock     int             `json:"out_of_stock"`
	Movements      int             `json:"movements"`
	LastMovementAt *time.Time      `json:"last_movement_at,omitempty"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un ítem en bajo stock.
type ReplenishmentSuggestionDTO struct {
	ItemID             string          `json:"item_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentStock       int             `json:"current_stock"`
	LowStockThreshold  int             `json:"low_stock_threshold"`
	IdealStock         int             `json:"ideal_stock"`          // umbral * 1.5
	SuggestedOrderQty  int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitPrice
	UnitsIssued        int             `json:"units_issued"`         // salidas dentro de la ventana
	Priority           int             `json:"priority"`             // 1 = más urgente
}
