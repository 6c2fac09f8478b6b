// Package query implementa las vistas de solo lectura del catálogo: búsqueda,
// bajo stock, ordenamiento, autocompletado y resumen para el tablero.
//
// Todas las funciones operan sobre un inventory.Snapshot tomado de una sola vez,
// por lo que una consulta nunca observa estado mezclado de antes y después de una mutación.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
	"github.com/jhoicas/inventario-desktop/internal/domain/inventory"
)

// SortField campo por el que se puede ordenar.
type SortField string

// Campos ordenables (mismos nombres que las columnas de la hoja).
const (
	FieldID                SortField = "id"
	FieldName              SortField = "name"
	FieldSKU               SortField = "sku"
	FieldQuantity          SortField = "quantity"
	FieldUnitPrice         SortField = "unitPrice"
	FieldLowStockThreshold SortField = "lowStockThreshold"
	FieldLastModified      SortField = "lastModified"
)

var sortFields = []SortField{
	FieldID, FieldName, FieldSKU, FieldQuantity, FieldUnitPrice, FieldLowStockThreshold, FieldLastModified,
}

// ParseSortField acepta el nombre del campo sin distinguir mayúsculas.
func ParseSortField(s string) (SortField, error) {
	for _, f := range sortFields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: campo de orden %q", domain.ErrInvalidInput, s)
}

// Direction sentido del ordenamiento.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection interpreta asc/desc; vacío equivale a asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, s)
}

// View vista inmutable sobre un snapshot del catálogo.
type View struct {
	items     []entity.Item
	movements []entity.MovementRecord
}

// NewView construye la vista. El snapshot no debe modificarse después.
func NewView(snap inventory.Snapshot) *View {
	return &View{items: snap.Items, movements: snap.Movements}
}

// Items todos los ítems en orden del catálogo.
func (v *View) Items() []entity.Item {
	return clone(v.items)
}

// Search coincidencia por subcadena, sin distinguir mayúsculas, sobre nombre o SKU.
// Conserva el orden del catálogo. Un texto vacío devuelve todos los ítems.
func (v *View) Search(text string) []entity.Item {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(text))
	if needle == "" {
		return v.Items()
	}
	out := make([]entity.Item, 0)
	for _, it := range v.items {
		if strings.Contains(fold.String(it.Name), needle) || strings.Contains(fold.String(it.SKU), needle) {
			out = append(out, it)
		}
	}
	return out
}

// LowStockItems ítems con quantity <= lowStockThreshold, por cantidad ascendente
// (empates en orden del catálogo).
func (v *View) LowStockItems() []entity.Item {
	out := make([]entity.Item, 0)
	for _, it := range v.items {
		if it.IsLowStock() {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// SortBy ordena una copia de los ítems. El orden es estable: los empates conservan el orden del catálogo.
func (v *View) SortBy(field SortField, dir Direction) ([]entity.Item, error) {
	less, err := lessFor(field)
	if err != nil {
		return nil, err
	}
	out := clone(v.items)
	if dir == Desc {
		sort.SliceStable(out, func(i, j int) bool { return less(out[j], out[i]) })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

func lessFor(field SortField) (func(a, b entity.Item) bool, error) {
	switch field {
	case FieldID:
		return func(a, b entity.Item) bool { return a.ID < b.ID }, nil
	case FieldName:
		fold := cases.Fold()
		return func(a, b entity.Item) bool { return fold.String(a.Name) < fold.String(b.Name) }, nil
	case FieldSKU:
		return func(a, b entity.Item) bool { return a.SKU < b.SKU }, nil
	case FieldQuantity:
		return func(a, b entity.Item) bool { return a.Quantity < b.Quantity }, nil
	case FieldUnitPrice:
		return func(a, b entity.Item) bool { return a.UnitPrice.LessThan(b.UnitPrice) }, nil
	case FieldLowStockThreshold:
		return func(a, b entity.Item) bool { return a.LowStockThreshold < b.LowStockThreshold }, nil
	case FieldLastModified:
		return func(a, b entity.Item) bool { return a.LastModified.Before(b.LastModified) }, nil
	}
	return nil, fmt.Errorf("%w: campo de orden %q", domain.ErrInvalidInput, field)
}

// Suggest nombres que empiezan por prefix (sin distinguir mayúsculas), para autocompletar.
// limit <= 0 no limita.
func (v *View) Suggest(prefix string, limit int) []string {
	fold := cases.Fold()
	p := fold.String(strings.TrimSpace(prefix))
	out := make([]string, 0)
	if p == "" {
		return out
	}
	for _, it := range v.items {
		if strings.HasPrefix(fold.String(it.Name), p) {
			out = append(out, it.Name)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Summary totales del tablero.
type Summary struct {
	Items          int
	Units          int
	StockValue     decimal.Decimal
	LowStock       int
	OutOfStock     int
	Movements      int
	LastMovementAt *time.Time
}

// Summary calcula los totales del snapshot.
func (v *View) Summary() Summary {
	s := Summary{Items: len(v.items), StockValue: decimal.Zero, Movements: len(v.movements)}
	for _, it := range v.items {
		s.Units += it.Quantity
		s.StockValue = s.StockValue.Add(it.StockValue())
		if it.IsLowStock() {
			s.LowStock++
		}
		if it.Quantity == 0 {
			s.OutOfStock++
		}
	}
	if n := len(v.movements); n > 0 {
		last := v.movements[n-1].Timestamp
		s.LastMovementAt = &last
	}
	return s
}

func clone(items []entity.Item) []entity.Item {
	out := make([]entity.Item, len(items))
	copy(out, items)
	return out
}
