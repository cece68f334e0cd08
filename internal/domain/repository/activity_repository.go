package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// ActivityRepository bitácora de auditoría (base core).
type ActivityRepository interface {
	Record(ctx context.Context, entry *entity.ActivityEntry) error
}
