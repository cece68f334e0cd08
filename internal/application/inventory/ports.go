package inventory

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la cantidad del artículo y el movimiento se escriban juntos o no se escriban.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.InventoryMovementRepository,
		attRepo repository.MovementAttachmentRepository,
	) error) error
}

// TransferForms genera el formulario de traslado de un movimiento ya confirmado.
type TransferForms interface {
	GenerateForMovement(ctx context.Context, movementID int64) (*entity.TransferForm, error)
}
