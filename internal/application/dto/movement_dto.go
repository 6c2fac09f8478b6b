package dto

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-desktop/internal/domain"
	"github.com/jhoicas/inventario-desktop/internal/domain/entity"
)

// MovementRequest body para POST /api/movements. Reason: RECEIVE, ISSUE, ADJUSTMENT, CORRECTION.
type MovementRequest struct {
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// ToEntity valida el motivo y convierte a la solicitud del motor.
func (r MovementRequest) ToEntity() (entity.MovementRequest, error) {
	reason, ok := entity.ParseMovementReason(r.Reason)
	if !ok {
		return entity.MovementRequest{}, fmt.Errorf("motivo %q: %w", r.Reason, domain.ErrInvalidInput)
	}
	return entity.MovementRequest{ItemID: r.ItemID, Delta: r.Delta, Reason: reason}, nil
}

// BatchRequest body para POST /api/movements/batch; se aplica todo o nada.
type BatchRequest struct {
	Movements []MovementRequest `json:"movements"`
}

// MovementResponse registro de auditoría.
type MovementResponse struct {
	ItemID            string    `json:"item_id"`
	Delta             int       `json:"delta"`
	Reason            string    `json:"reason"`
	Timestamp         time.Time `json:"timestamp"`
	ResultingQuantity int       `json:"resulting_quantity"`
}

// NewMovementResponse mapea un registro.
func NewMovementResponse(rec entity.MovementRecord) MovementResponse {
	return MovementResponse{
		ItemID:            rec.ItemID,
		Delta:             rec.Delta,
		Reason:            string(rec.Reason),
		Timestamp:         rec.Timestamp,
		ResultingQuantity: rec.ResultingQuantity,
	}
}

// NewMovementListResponse mapea varios registros en orden.
func NewMovementListResponse(recs []entity.MovementRecord) []MovementResponse {
	out := make([]MovementResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, NewMovementResponse(rec))
	}
	return out
}
