package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

var taskPriorityRank = map[string]int{"high": 0, "mid/high": 1, "mid": 2, "low/mid": 3, "low": 4, "": 5}

// TaskRepo tareas y salas en memoria. Rooms: sala -> edificio.
type TaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]entity.Task
	nextID int64
	clock  time.Time

	Rooms        map[int64]int64
	SummaryCalls int
	FailSummary  error
}

var _ repository.TaskRepository = (*TaskRepo)(nil)

// NewTaskRepo repo vacío con las salas dadas.
func NewTaskRepo(rooms map[int64]int64) *TaskRepo {
	if rooms == nil {
		rooms = map[int64]int64{}
	}
	return &TaskRepo{tasks: map[int64]entity.Task{}, Rooms: rooms, clock: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
}

// tick reloj monotónico para que el orden por fecha sea determinista.
func (r *TaskRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

// Seed inserta una tarea tal cual (ID asignado si es 0).
func (r *TaskRepo) Seed(t entity.Task) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == 0 {
		r.nextID++
		t.ID = r.nextID
	} else if t.ID > r.nextID {
		r.nextID = t.ID
	}
	now := r.tick()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	if t.Status == "" {
		t.Status = entity.TaskStatusOpen
	}
	r.tasks[t.ID] = t
	return t.ID
}

func (r *TaskRepo) Paginated(_ context.Context, f repository.TaskFilter, sortKey string, limit, offset int) ([]*entity.Task, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offset < 0 || limit < 0 {
		return nil, 0, fmt.Errorf("OFFSET/LIMIT must not be negative")
	}
	var rows []entity.Task
	for _, t := range r.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.BuildingID > 0 && t.BuildingID != f.BuildingID {
			continue
		}
		if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(t.Title), needle) && !strings.Contains(strings.ToLower(t.Description), needle) {
				continue
			}
		}
		rows = append(rows, t)
	}
	sort.SliceStable(rows, func(i, j int) bool { return taskLess(sortKey, rows[i], rows[j]) })
	total := len(rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]*entity.Task, 0, end-offset)
	for i := offset; i < end; i++ {
		t := rows[i]
		out = append(out, &t)
	}
	return out, total, nil
}

func taskLess(sortKey string, a, b entity.Task) bool {
	switch sortKey {
	case "due_asc":
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID > b.ID
	case "priority":
		if ra, rb := taskPriorityRank[a.Priority], taskPriorityRank[b.Priority]; ra != rb {
			return ra < rb
		}
		return a.UpdatedAt.After(b.UpdatedAt)
	case "updated":
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (r *TaskRepo) RecentlyUpdated(ctx context.Context, limit int) ([]*entity.Task, error) {
	rows, _, err := r.Paginated(ctx, repository.TaskFilter{}, "updated", limit, 0)
	return rows, err
}

func (r *TaskRepo) GetByID(_ context.Context, id int64) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TaskRepo) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.Rooms[t.RoomID]; !ok || b != t.BuildingID {
		return domain.ValidationErrors{"Building and room are required"}
	}
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = r.tick()
	t.UpdatedAt = t.CreatedAt
	r.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepo) UpdatePartial(_ context.Context, id int64, upd repository.TaskUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.Priority != nil {
		t.Priority = *upd.Priority
	}
	if upd.AssignedTo != nil {
		t.AssignedTo = *upd.AssignedTo
	}
	if upd.DueDateSet {
		t.DueDate = upd.DueDate
	}
	t.UpdatedAt = r.tick()
	r.tasks[id] = t
	return nil
}

// Summary cuenta contra la fecha del reloj interno.
func (r *TaskRepo) Summary(_ context.Context) (*entity.TaskSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SummaryCalls++
	if r.FailSummary != nil {
		return nil, r.FailSummary
	}
	today := r.clock.Truncate(24 * time.Hour)
	var s entity.TaskSummary
	for _, t := range r.tasks {
		s.Total++
		if t.Status == entity.TaskStatusOpen {
			s.Open++
		}
		if t.Status == entity.TaskStatusDone {
			if !t.UpdatedAt.Before(today.AddDate(0, 0, -30)) {
				s.Done30++
			}
			continue
		}
		if t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(today) {
			s.Overdue++
		} else if !t.DueDate.After(today.AddDate(0, 0, 7)) {
			s.DueWeek++
		}
	}
	return &s, nil
}

func (r *TaskRepo) RoomBelongsTo(_ context.Context, buildingID, roomID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.Rooms[roomID]
	return ok && b == buildingID, nil
}
