package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// ApplyMovement aplica un cambio de cantidad y registra su MovementRecord.
// NuevaCantidad = CantidadActual + delta; nunca puede quedar negativa.
func (c *Catalog) ApplyMovement(itemID string, delta int, reason entity.MovementReason) (entity.MovementRecord, error) {
	pending := make(map[string]int, 1)
	req := entity.MovementRequest{ItemID: itemID, Delta: delta, Reason: reason}
	if _, err := c.plan(pending, req); err != nil {
		return entity.MovementRecord{}, err
	}
	records := c.commit([]entity.MovementRequest{req})
	return records[0], nil
}

// ApplyBatch aplica todos los movimientos o ninguno. Si alguna entrada falla se
// devuelve *domain.BatchError con su índice y causa, y el catálogo no cambia.
func (c *Catalog) ApplyBatch(reqs []entity.MovementRequest) ([]entity.MovementRecord, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	pending := make(map[string]int, len(reqs))
	for i, req := range reqs {
		if _, err := c.plan(pending, req); err != nil {
			return nil, &domain.BatchError{Index: i, ItemID: req.ItemID, Err: err}
		}
	}
	return c.commit(reqs), nil
}

// plan valida un movimiento contra las cantidades pendientes del lote (o las actuales).
func (c *Catalog) plan(pending map[string]int, req entity.MovementRequest) (int, error) {
	item, ok := c.items[req.ItemID]
	if !ok {
		return 0, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, req.ItemID)
	}
	if !req.Reason.AcceptsDelta(req.Delta) {
		return 0, fmt.Errorf("%w: delta %d no válido para %q", domain.ErrInvalidInput, req.Delta, req.Reason)
	}
	current, seen := pending[req.ItemID]
	if !seen {
		current = item.Quantity
	}
	next := current + req.Delta
	if next < 0 {
		return 0, fmt.Errorf("%w: ítem %s tiene %d, se solicitan %d", domain.ErrInsufficientStock, req.ItemID, current, -req.Delta)
	}
	pending[req.ItemID] = next
	return next, nil
}

// commit aplica movimientos ya validados con plan; no puede fallar.
func (c *Catalog) commit(reqs []entity.MovementRequest) []entity.MovementRecord {
	now := c.clock()
	records := make([]entity.MovementRecord, 0, len(reqs))
	for _, req := range reqs {
		item := c.items[req.ItemID]
		item.Quantity += req.Delta
		item.LastModified = now
		rec := entity.MovementRecord{
			ItemID:            req.ItemID,
			Delta:             req.Delta,
			Reason:            req.Reason,
			Timestamp:         now,
			ResultingQuantity: item.Quantity,
		}
		c.movements = append(c.movements, rec)
		c.history[req.ItemID]++
		records = append(records, rec)
	}
	return records
}
