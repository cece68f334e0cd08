// Package inventory reglas puras del libro de movimientos (sin dependencias de infraestructura).
package inventory

import (
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// SignedDelta devuelve +amount para "in" y -amount para "out".
func SignedDelta(direction string, amount int) (int, error) {
	if amount <= 0 {
		return 0, domain.ValidationErrors{"Amount must be greater than zero."}
	}
	switch direction {
	case entity.DirectionIn:
		return amount, nil
	case entity.DirectionOut:
		return -amount, nil
	}
	return 0, domain.ValidationErrors{"Direction must be in or out."}
}

// ApplyDelta nueva cantidad tras aplicar delta. Nunca negativa.
func ApplyDelta(current, delta int) (int, error) {
	next := current + delta
	if next < 0 {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// DefaultSectors completa el lado faltante según la dirección: "out" toma el sector del
// artículo como origen, "in" lo toma como destino. El otro lado no se toca.
func DefaultSectors(direction string, itemSector, source, target *int64) (*int64, *int64) {
	switch direction {
	case entity.DirectionOut:
		if source == nil {
			source = copyID(itemSector)
		}
	case entity.DirectionIn:
		if target == nil {
			target = copyID(itemSector)
		}
	}
	return source, target
}

// InitialTransferStatus pending si requiere firma; signed en caso contrario.
func InitialTransferStatus(requiresSignature bool) string {
	if requiresSignature {
		return entity.TransferPending
	}
	return entity.TransferSigned
}

// CanTransition solo pending -> signed.
func CanTransition(from, to string) bool {
	return from == entity.TransferPending && to == entity.TransferSigned
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
