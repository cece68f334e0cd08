package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo tareas (base apps).
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador.
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const taskSelect = `
	SELECT t.id, t.building_id, t.room_id, t.title, t.description, t.priority, t.status,
		t.assigned_to, t.due_date, t.created_by, t.created_at, t.updated_at,
		b.name,
		r.room_number || CASE WHEN COALESCE(r.label, '') = '' THEN '' ELSE ' - ' || r.label END
	FROM tasks t
	JOIN buildings b ON b.id = t.building_id
	JOIN rooms r ON r.id = t.room_id`

// taskOrder ORDER BY por clave de orden; desconocido = "recent".
func taskOrder(sort string) string {
	switch sort {
	case "due_asc":
		return ` ORDER BY t.due_date IS NULL, t.due_date ASC, t.id DESC`
	case "priority":
		return ` ORDER BY array_position(ARRAY['high','mid/high','mid','low/mid','low','']::text[], t.priority), t.updated_at DESC`
	case "updated":
		return ` ORDER BY t.updated_at DESC, t.id DESC`
	}
	return ` ORDER BY t.created_at DESC, t.id DESC`
}

func taskWhere(f repository.TaskFilter) (string, []any) {
	where := []string{"1=1"}
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if f.BuildingID > 0 {
		args = append(args, f.BuildingID)
		where = append(where, fmt.Sprintf("t.building_id = $%d", len(args)))
	}
	if f.AssignedTo != "" {
		args = append(args, f.AssignedTo)
		where = append(where, fmt.Sprintf("t.assigned_to = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", len(args), len(args)))
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// Paginated devuelve la página y el total de filas que cumplen el filtro.
func (r *TaskRepo) Paginated(ctx context.Context, filter repository.TaskFilter, sort string, limit, offset int) ([]*entity.Task, int, error) {
	where, args := taskWhere(filter)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tasks t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := taskSelect + where + taskOrder(sort) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	list, err := collectTasks(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// RecentlyUpdated últimas tareas modificadas.
func (r *TaskRepo) RecentlyUpdated(ctx context.Context, limit int) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, taskSelect+` ORDER BY t.updated_at DESC, t.id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recently updated tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// GetByID (nil, nil) si no existe.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Create inserta la tarea y completa ID y timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	query := `
		INSERT INTO tasks (building_id, room_id, title, description, priority, assigned_to, status, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		t.BuildingID, t.RoomID, t.Title, nullIfEmpty(t.Description), t.Priority,
		nullIfEmpty(t.AssignedTo), t.Status, t.DueDate, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ValidationErrors{"Building and room are required"}
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdatePartial actualiza solo los campos presentes.
func (r *TaskRepo) UpdatePartial(ctx context.Context, id int64, upd repository.TaskUpdate) error {
	if upd.Empty() {
		return nil
	}
	sets := []string{}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Priority != nil {
		add("priority", *upd.Priority)
	}
	if upd.AssignedTo != nil {
		add("assigned_to", nullIfEmpty(*upd.AssignedTo))
	}
	if upd.DueDateSet {
		add("due_date", upd.DueDate)
	}
	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") + `, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary conteos agregados.
func (r *TaskRepo) Summary(ctx context.Context) (*entity.TaskSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'done' AND updated_at >= CURRENT_DATE - INTERVAL '30 days'),
			COUNT(*) FILTER (WHERE status <> 'done' AND due_date BETWEEN CURRENT_DATE AND CURRENT_DATE + INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE status <> 'done' AND due_date IS NOT NULL AND due_date < CURRENT_DATE)
		FROM tasks`
	var s entity.TaskSummary
	if err := r.q.QueryRow(ctx, query).Scan(&s.Total, &s.Open, &s.Done30, &s.DueWeek, &s.Overdue); err != nil {
		return nil, fmt.Errorf("task summary: %w", err)
	}
	return &s, nil
}

func collectTasks(rows pgx.Rows) ([]*entity.Task, error) {
	var list []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	var description, assigned *string
	if err := row.Scan(&t.ID, &t.BuildingID, &t.RoomID, &t.Title, &description, &t.Priority, &t.Status,
		&assigned, &t.DueDate, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt, &t.BuildingName, &t.RoomLabel); err != nil {
		return nil, err
	}
	t.Description = deref(description)
	t.AssignedTo = deref(assigned)
	return &t, nil
}
