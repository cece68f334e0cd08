package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// InventoryItemRepository puerto de persistencia para artículos (base apps).
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE). Solo dentro de una transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	// ApplyDelta suma delta de forma atómica y devuelve la nueva cantidad.
	// Devuelve domain.ErrInsufficientStock si el resultado sería negativo.
	ApplyDelta(ctx context.Context, id int64, delta int) (int, error)
	List(ctx context.Context, filter access.SectorFilter) ([]*entity.InventoryItem, error)
	CountBySector(ctx context.Context, sectorID int64) (int, error)
}
