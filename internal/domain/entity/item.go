package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un ítem de inventario (SKU) del catálogo.
// Quantity solo cambia mediante movimientos; nunca es negativa.
type Item struct {
	ID                string
	Name              string
	SKU               string          // opcional; único entre los ítems que lo definen
	Quantity          int
	UnitPrice         decimal.Decimal // 2 decimales
	LowStockThreshold int
	LastModified      time.Time
}

// IsLowStock indica si el ítem está en o por debajo de su umbral.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// StockValue devuelve Quantity * UnitPrice.
func (i Item) StockValue() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewItemInput datos para crear un ítem. Quantity inicia en 0.
type NewItemInput struct {
	Name              string
	SKU               string
	UnitPrice         decimal.Decimal
	LowStockThreshold int
}

// ItemPatch actualización parcial; los campos nil no se modifican.
// SKU apuntando a "" elimina el SKU del ítem.
type ItemPatch struct {
	Name              *string
	SKU               *string
	UnitPrice         *decimal.Decimal
	LowStockThreshold *int
}

// IsEmpty indica si el patch no modifica ningún campo.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.SKU == nil && p.UnitPrice == nil && p.LowStockThreshold == nil
}
