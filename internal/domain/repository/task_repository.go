package repository

import (
	"context"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// TaskFilter filtros del listado paginado.
type TaskFilter struct {
	Status     string
	BuildingID int64
	AssignedTo string
	Search     string
}

// TaskUpdate campos opcionales para actualización parcial (nil = sin cambio).
type TaskUpdate struct {
	Status     *string
	Priority   *string
	AssignedTo *string
	DueDateSet bool
	DueDate    *time.Time // con DueDateSet, nil limpia la fecha
}

// Empty indica si no hay cambios.
func (u TaskUpdate) Empty() bool {
	return u.Status == nil && u.Priority == nil && u.AssignedTo == nil && !u.DueDateSet
}

// TaskRepository puerto de persistencia para tareas (base apps).
type TaskRepository interface {
	Paginated(ctx context.Context, filter TaskFilter, sort string, limit, offset int) ([]*entity.Task, int, error)
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	Create(ctx context.Context, task *entity.Task) error
	UpdatePartial(ctx context.Context, id int64, upd TaskUpdate) error
	Summary(ctx context.Context) (*entity.TaskSummary, error)
	RecentlyUpdated(ctx context.Context, limit int) ([]*entity.Task, error)
}
