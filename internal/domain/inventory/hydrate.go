package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// Hydrate construye un catálogo nuevo a partir de ítems y movimientos ya decodificados,
// validando las invariantes del agregado. Los ítems conservan su orden y LastModified.
func Hydrate(snap Snapshot, opts ...Option) (*Catalog, error) {
	c := NewCatalog(opts...)
	last := make(map[string]int) // item id -> última cantidad resultante
	for i, in := range snap.Items {
		if err := validateStored(in); err != nil {
			return nil, fmt.Errorf("ítem %d: %w", i, err)
		}
		if _, dup := c.items[in.ID]; dup {
			return nil, fmt.Errorf("ítem %d: %w: id duplicado %s", i, domain.ErrInvalidInput, in.ID)
		}
		if in.SKU != "" {
			if _, dup := c.skus[in.SKU]; dup {
				return nil, fmt.Errorf("ítem %d: %w: %s", i, domain.ErrDuplicateSKU, in.SKU)
			}
			c.skus[in.SKU] = in.ID
		}
		item := in
		c.items[item.ID] = &item
		c.order = append(c.order, item.ID)
	}
	for i, m := range snap.Movements {
		if _, ok := c.items[m.ItemID]; !ok {
			return nil, fmt.Errorf("movimiento %d: %w: ítem %s", i, domain.ErrNotFound, m.ItemID)
		}
		if !m.Reason.AcceptsDelta(m.Delta) {
			return nil, fmt.Errorf("movimiento %d: %w: delta %d para %q", i, domain.ErrInvalidInput, m.Delta, m.Reason)
		}
		if m.ResultingQuantity < 0 {
			return nil, fmt.Errorf("movimiento %d: %w: cantidad resultante negativa", i, domain.ErrInvalidInput)
		}
		if prev, ok := last[m.ItemID]; ok && prev+m.Delta != m.ResultingQuantity {
			return nil, fmt.Errorf("movimiento %d: %w: %d%+d no da %d", i, domain.ErrInvalidInput, prev, m.Delta, m.ResultingQuantity)
		}
		last[m.ItemID] = m.ResultingQuantity
		c.movements = append(c.movements, m)
		c.history[m.ItemID]++
	}
	// El historial puede empezar a mitad (archivo guardado sin historial), pero debe
	// terminar en la cantidad actual del ítem.
	for id, q := range last {
		if got := c.items[id].Quantity; got != q {
			return nil, fmt.Errorf("ítem %s: %w: cantidad %d distinta de la última resultante %d", id, domain.ErrInvalidInput, got, q)
		}
	}
	return c, nil
}

func validateStored(it entity.Item) error {
	switch {
	case strings.TrimSpace(it.ID) == "":
		return fmt.Errorf("%w: id vacío", domain.ErrInvalidInput)
	case strings.TrimSpace(it.Name) == "":
		return fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	case it.Quantity < 0:
		return fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	case it.UnitPrice.IsNegative():
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	case it.LowStockThreshold < 0:
		return fmt.Errorf("%w: umbral negativo", domain.ErrInvalidInput)
	}
	for field, s := range map[string]string{"id": it.ID, "nombre": it.Name, "sku": it.SKU} {
		if err := ValidateText(field, s); err != nil {
			return err
		}
	}
	return nil
}
