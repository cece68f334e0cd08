package entity

import "time"

// Dirección del movimiento.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Estados del traslado. Solo avanza pending -> signed.
const (
	TransferPending = "pending"
	TransferSigned  = "signed"
)

// ReasonInitialQuantity motivo del movimiento sintético al crear un artículo con stock.
const ReasonInitialQuantity = "Initial quantity"

// InventoryMovement registro inmutable de un cambio de cantidad. Solo TransferStatus y
// TransferFormKey/TransferFormURL cambian después de creado.
type InventoryMovement struct {
	ID                int64
	ItemID            int64
	Direction         string
	Amount            int // siempre positivo
	Reason            string
	Notes             string
	UserID            *int64 // nil = generado por el sistema
	SourceSectorID    *int64
	TargetSectorID    *int64
	SourceLocation    string
	TargetLocation    string
	RequiresSignature bool
	TransferStatus    string
	TransferFormKey   string
	TransferFormURL   string
	CreatedAt         time.Time

	Attachments []MovementAttachment // no siempre poblado
}

// SignedAmount cantidad con signo según la dirección.
func (m *InventoryMovement) SignedAmount() int {
	if m.Direction == DirectionOut {
		return -m.Amount
	}
	return m.Amount
}

// IsSigned indica si el traslado está firmado.
func (m *InventoryMovement) IsSigned() bool {
	return m.TransferStatus == TransferSigned
}

// MovementDetail movimiento con datos del artículo (join), usado por el formulario de traslado
// y por la carga de adjuntos.
type MovementDetail struct {
	InventoryMovement
	ItemName     string
	ItemSKU      string
	ItemLocation string
	ItemSectorID *int64
}

// TransferForm documento generado para un movimiento.
type TransferForm struct {
	MovementID int64
	Key        string
	URL        string
}
