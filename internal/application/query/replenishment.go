package query

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// Suggestion sugerencia de reposición para un ítem en bajo stock.
type Suggestion struct {
	Item               entity.Item
	IdealStock         int             // umbral * 1.5, redondeado hacia arriba
	SuggestedOrderQty  int             // IdealStock - cantidad actual, nunca negativo
	EstimatedOrderCost decimal.Decimal // SuggestedOrderQty * precio unitario
	UnitsIssued        int             // salidas (ISSUE) dentro de la ventana
	Priority           int             // 1 = más urgente
}

// Replenishment lista de reposición de los ítems en bajo stock. Ordena primero por mayor
// volumen de salidas en [now-window, now], luego por mayor déficit bajo el umbral; los
// empates conservan el orden del catálogo.
func (v *View) Replenishment(window time.Duration, now time.Time) []Suggestion {
	since := now.Add(-window)
	issued := make(map[string]int)
	for _, m := range v.movements {
		if m.Reason != entity.ReasonIssue || m.Timestamp.Before(since) || m.Timestamp.After(now) {
			continue
		}
		issued[m.ItemID] -= m.Delta
	}

	out := make([]Suggestion, 0)
	for _, it := range v.items {
		if !it.IsLowStock() {
			continue
		}
		ideal := (it.LowStockThreshold*3 + 1) / 2
		qty := max(ideal-it.Quantity, 0)
		out = append(out, Suggestion{
			Item:               it,
			IdealStock:         ideal,
			SuggestedOrderQty:  qty,
			EstimatedOrderCost: it.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
			UnitsIssued:        issued[it.ID],
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UnitsIssued != b.UnitsIssued {
			return a.UnitsIssued > b.UnitsIssued
		}
		return a.Item.LowStockThreshold-a.Item.Quantity > b.Item.LowStockThreshold-b.Item.Quantity
	})

	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}
