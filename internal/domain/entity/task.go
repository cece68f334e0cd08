package entity

import "time"

// Estados de tarea. TaskStatusDone es terminal.
const (
	TaskStatusOpen       = "open"
	TaskStatusInProgress = "in_progress"
	TaskStatusBlocked    = "blocked"
	TaskStatusDone       = "done"
)

// TaskStatuses estados válidos.
var TaskStatuses = []string{TaskStatusOpen, TaskStatusInProgress, TaskStatusBlocked, TaskStatusDone}

// TaskPriorities prioridades válidas, de mayor a menor ("" = sin prioridad).
var TaskPriorities = []string{"high", "mid/high", "mid", "low/mid", "low", ""}

// Task tarea de mantenimiento asociada a un edificio y una sala.
type Task struct {
	ID           int64
	BuildingID   int64
	RoomID       int64
	Title        string
	Description  string
	Priority     string
	Status       string
	AssignedTo   string
	DueDate      *time.Time
	CreatedBy    *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	BuildingName string // join
	RoomLabel    string // join
}

// TaskSummary conteos agregados de tareas.
type TaskSummary struct {
	Total   int `json:"total"`
	Open    int `json:"open"`
	Done30  int `json:"done30"`
	DueWeek int `json:"dueWeek"`
	Overdue int `json:"overdue"`
}

// IsValidTaskStatus valida el estado.
func IsValidTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidTaskPriority valida la prioridad.
func IsValidTaskPriority(p string) bool {
	for _, v := range TaskPriorities {
		if v == p {
			return true
		}
	}
	return false
}
