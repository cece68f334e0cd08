package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// SectorRepository puerto de persistencia para sectores (base core).
type SectorRepository interface {
	Create(ctx context.Context, sector *entity.Sector) error
	GetByID(ctx context.Context, id int64) (*entity.Sector, error)
	Update(ctx context.Context, sector *entity.Sector) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*entity.Sector, error)
	NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}
