package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// InventoryMovementRepository puerto de persistencia para movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetDetail(ctx context.Context, id int64) (*entity.MovementDetail, error)
	ListRecentByItem(ctx context.Context, itemID int64, limit int) ([]*entity.InventoryMovement, error)
	ListPendingTransfers(ctx context.Context, filter access.SectorFilter, limit int) ([]*entity.MovementDetail, error)
	// MarkSigned avanza pending -> signed. Devuelve false si no estaba pending.
	MarkSigned(ctx context.Context, id int64) (bool, error)
	SetTransferForm(ctx context.Context, id int64, key, url string) error
}

// MovementAttachmentRepository puerto para adjuntos (append-only).
type MovementAttachmentRepository interface {
	Create(ctx context.Context, att *entity.MovementAttachment) error
	ListByMovement(ctx context.Context, movementID int64) ([]entity.MovementAttachment, error)
}
