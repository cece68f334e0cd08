package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de la base apps con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.InventoryMovementRepository,
		attRepo repository.MovementAttachmentRepository,
	) error) error
}

// BlobStore almacenamiento direccionado por clave (S3/MinIO o disco local).
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// FormRenderer genera el PDF del formulario de traslado.
type FormRenderer interface {
	RenderTransferForm(ctx context.Context, data *FormData) ([]byte, error)
}

// SectorDirectory resuelve nombres de sector (base core, puede no estar disponible).
type SectorDirectory interface {
	NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// UserDirectory resuelve el usuario que registró el movimiento.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// FormData contenido del formulario de confirmación de traslado, con etiquetas ya resueltas.
type FormData struct {
	MovementID     int64
	ItemName       string
	ItemSKU        string
	Direction      string
	Amount         int
	SourceSector   string
	TargetSector   string
	SourceLocation string
	TargetLocation string
	Reason         string
	Notes          string
	Actor          string
	MovedAt        time.Time
	GeneratedAt    time.Time
}
