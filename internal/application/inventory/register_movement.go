package inventory

import (
	"strings"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
)

// MovementInput entrada normalizada de MoveStock.
type MovementInput struct {
	ItemID            int64
	Direction         string
	Amount            int
	Reason            string
	Notes             string
	SourceSectorID    *int64
	TargetSectorID    *int64
	SourceLocation    string
	TargetLocation    string
	RequiresSignature bool
}

// MovementInputFromRequest adapta el request HTTP a MovementInput (recorta textos y normaliza
// la dirección a minúsculas).
func MovementInputFromRequest(itemID int64, in dto.MoveStockRequest) MovementInput {
	return MovementInput{
		ItemID:            itemID,
		Direction:         strings.ToLower(strings.TrimSpace(in.Direction)),
		Amount:            in.Amount,
		Reason:            strings.TrimSpace(in.Reason),
		Notes:             strings.TrimSpace(in.Notes),
		SourceSectorID:    in.SourceSectorID,
		TargetSectorID:    in.TargetSectorID,
		SourceLocation:    strings.TrimSpace(in.SourceLocation),
		TargetLocation:    strings.TrimSpace(in.TargetLocation),
		RequiresSignature: in.RequiresSignature,
	}
}
