// Package task listado paginado, alta y edición parcial de tareas de mantenimiento.
package task

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

const (
	summaryCacheKey  = "tasks:summary"
	defaultPageLimit = 25
	maxPageLimit     = 100
	// MaxPage tope de página: con limit <= 100 el offset no desborda.
	MaxPage        = 1_000_000
	maxRecentLimit = 20
	dateLayout     = "2006-01-02"
)

// Claves de orden del listado.
const (
	SortRecent   = "recent"
	SortDueAsc   = "due_asc"
	SortPriority = "priority"
	SortUpdated  = "updated"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Cache caché compartida del resumen.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RoomChecker valida que la sala pertenezca al edificio.
type RoomChecker interface {
	RoomBelongsTo(ctx context.Context, buildingID, roomID int64) (bool, error)
}

// UseCase casos de uso de tareas.
type UseCase struct {
	tasks      repository.TaskRepository
	rooms      RoomChecker
	cache      Cache
	summaryTTL time.Duration
	activity   *activity.Recorder
	log        *logger.Logger
}

// NewUseCase construye el caso de uso. cache puede ser nil.
func NewUseCase(
	tasks repository.TaskRepository,
	rooms RoomChecker,
	cache Cache,
	summaryTTL time.Duration,
	recorder *activity.Recorder,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{tasks: tasks, rooms: rooms, cache: cache, summaryTTL: summaryTTL, activity: recorder, log: log}
}

func (uc *UseCase) require(actor *access.Actor, key, op string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Can(key) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Str("op", op).Str("permission", key).Msg("forbidden: tareas")
		return domain.ErrForbidden
	}
	return nil
}

// NormalizeSort clave de orden válida; cualquier otra cosa es "recent".
func NormalizeSort(s string) string {
	switch s {
	case SortDueAsc, SortPriority, SortUpdated:
		return s
	}
	return SortRecent
}

// ClampPage limit en [1,100] (0 = 25) y page en [1, MaxPage].
func ClampPage(limit, page int) (int, int) {
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return limit, page
}

// List página de tareas con filtros y orden.
func (uc *UseCase) List(ctx context.Context, actor *access.Actor, q dto.TaskListQuery) (*dto.TaskListResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "list"); err != nil {
		return nil, err
	}
	limit, page := ClampPage(q.Limit, q.Page)
	filter := repository.TaskFilter{
		Status:     strings.TrimSpace(q.Status),
		BuildingID: q.Building,
		AssignedTo: strings.TrimSpace(q.AssignedTo),
		Search:     strings.TrimSpace(q.Search),
	}
	rows, total, err := uc.tasks.Paginated(ctx, filter, NormalizeSort(q.Sort), limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	out := &dto.TaskListResponse{
		Data: make([]dto.TaskResponse, 0, len(rows)),
		Meta: dto.PageMeta{Total: total, Page: page, PerPage: limit, TotalPages: totalPages},
	}
	for _, t := range rows {
		out.Data = append(out.Data, ToTaskResponse(t))
	}
	return out, nil
}

// RecentlyUpdated últimas tareas modificadas (limit en [1,20]).
func (uc *UseCase) RecentlyUpdated(ctx context.Context, actor *access.Actor, limit int) ([]dto.TaskResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "recent"); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 5
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	rows, err := uc.tasks.RecentlyUpdated(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TaskResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, ToTaskResponse(t))
	}
	return out, nil
}

// Find tarea por id.
func (uc *UseCase) Find(ctx context.Context, actor *access.Actor, id int64) (*dto.TaskResponse, error) {
	if err := uc.require(actor, entity.PermViewTasks, "find"); err != nil {
		return nil, err
	}
	return uc.find(ctx, id)
}

func (uc *UseCase) find(ctx context.Context, id int64) (*dto.TaskResponse, error) {
	t, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToTaskResponse(t)
	return &resp, nil
}

// Summary conteos agregados, cacheados por summaryTTL.
func (uc *UseCase) Summary(ctx context.Context, actor *access.Actor) (*entity.TaskSummary, error) {
	if err := uc.require(actor, entity.PermViewTasks, "summary"); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		var cached entity.TaskSummary
		ok, err := uc.cache.Get(ctx, summaryCacheKey, &cached)
		if err != nil {
			uc.log.Warn().Err(err).Msg("caché de resumen: lectura fallida")
		} else if ok {
			return &cached, nil
		}
	}
	s, err := uc.tasks.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, summaryCacheKey, s, uc.summaryTTL); err != nil {
			uc.log.Warn().Err(err).Msg("caché de resumen: escritura fallida")
		}
	}
	return s, nil
}

// Create alta de tarea. Prioridad inválida queda vacía y estado inválido queda "open".
func (uc *UseCase) Create(ctx context.Context, actor *access.Actor, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	if err := uc.require(actor, entity.PermManageTasks, "create"); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ValidationErrors{"Title is required"}
	}
	if in.BuildingID <= 0 || in.RoomID <= 0 {
		return nil, domain.ValidationErrors{"Building and room are required"}
	}
	ok, err := uc.rooms.RoomBelongsTo(ctx, in.BuildingID, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ValidationErrors{"Room does not belong to the selected building"}
	}
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if !entity.IsValidTaskPriority(priority) {
		priority = ""
	}
	status := in.Status
	if !entity.IsValidTaskStatus(status) {
		status = entity.TaskStatusOpen
	}

	t := &entity.Task{
		BuildingID:  in.BuildingID,
		RoomID:      in.RoomID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Status:      status,
		AssignedTo:  strings.TrimSpace(in.AssignedTo),
		DueDate:     due,
		CreatedBy:   actor.UserIDPtr(),
	}
	if err := uc.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	uc.invalidateSummary(ctx)
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionTaskCreate, "task", t.ID, nil)
	return uc.find(ctx, t.ID)
}

// UpdatePartial cambia solo los campos presentes. Estado o prioridad inválidos son error;
// assigned_to vacío lo limpia.
func (uc *UseCase) UpdatePartial(ctx context.Context, actor *access.Actor, id int64, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	if err := uc.require(actor, entity.PermManageTasks, "update"); err != nil {
		return nil, err
	}
	current, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}

	var upd repository.TaskUpdate
	if in.Status.Set {
		s := deref(in.Status.Value)
		if !entity.IsValidTaskStatus(s) {
			return nil, domain.ValidationErrors{"Invalid status"}
		}
		upd.Status = &s
	}
	if in.Priority.Set {
		p := deref(in.Priority.Value)
		if !entity.IsValidTaskPriority(p) {
			return nil, domain.ValidationErrors{"Invalid priority"}
		}
		upd.Priority = &p
	}
	if in.AssignedTo.Set {
		a := strings.TrimSpace(deref(in.AssignedTo.Value))
		upd.AssignedTo = &a
	}
	if in.DueDate.Set {
		due, err := parseDate(deref(in.DueDate.Value))
		if err != nil {
			return nil, err
		}
		upd.DueDateSet, upd.DueDate = true, due
	}
	if upd.Empty() {
		resp := ToTaskResponse(current)
		return &resp, nil
	}

	if err := uc.tasks.UpdatePartial(ctx, id, upd); err != nil {
		return nil, err
	}
	uc.invalidateSummary(ctx)
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionTaskUpdate, "task", id, nil)
	return uc.find(ctx, id)
}

func (uc *UseCase) invalidateSummary(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, summaryCacheKey); err != nil {
		uc.log.Warn().Err(err).Msg("caché de resumen: invalidación fallida")
	}
}

func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !datePattern.MatchString(s) {
		return nil, domain.ValidationErrors{"Invalid date format. Use YYYY-MM-DD"}
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, domain.ValidationErrors{"Invalid date format. Use YYYY-MM-DD"}
	}
	return &d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToTaskResponse mapea entidad -> DTO.
func ToTaskResponse(t *entity.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:           t.ID,
		BuildingID:   t.BuildingID,
		RoomID:       t.RoomID,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     t.Priority,
		Status:       t.Status,
		AssignedTo:   t.AssignedTo,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		BuildingName: t.BuildingName,
		RoomLabel:    t.RoomLabel,
	}
	if t.DueDate != nil {
		resp.DueDate = t.DueDate.Format(dateLayout)
	}
	return resp
}
