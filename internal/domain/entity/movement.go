package entity

import (
	"strings"
	"time"
)

// MovementReason motivo de un movimiento de stock.
type MovementReason string

// Motivos de movimiento de inventario.
const (
	ReasonReceive    MovementReason = "RECEIVE"    // entrada
	ReasonIssue      MovementReason = "ISSUE"      // salida
	ReasonAdjustment MovementReason = "ADJUSTMENT" // ajuste
	ReasonCorrection MovementReason = "CORRECTION" // corrección de conteo
)

// MovementReasons lista los motivos válidos en orden estable.
var MovementReasons = []MovementReason{ReasonReceive, ReasonIssue, ReasonAdjustment, ReasonCorrection}

// ParseMovementReason acepta el motivo sin distinguir mayúsculas.
func ParseMovementReason(s string) (MovementReason, bool) {
	r := MovementReason(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range MovementReasons {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// AcceptsDelta valida el signo del delta según el motivo:
// RECEIVE > 0, ISSUE < 0, ADJUSTMENT y CORRECTION distinto de 0.
func (r MovementReason) AcceptsDelta(delta int) bool {
	switch r {
	case ReasonReceive:
		return delta > 0
	case ReasonIssue:
		return delta < 0
	case ReasonAdjustment, ReasonCorrection:
		return delta != 0
	}
	return false
}

// MovementRecord registro inmutable de auditoría de un cambio de cantidad.
type MovementRecord struct {
	ItemID            string
	Delta             int
	Reason            MovementReason
	Timestamp         time.Time
	ResultingQuantity int
}

// MovementRequest una entrada de ApplyBatch.
type MovementRequest struct {
	ItemID string
	Delta  int
	Reason MovementReason
}
