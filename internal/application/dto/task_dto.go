package dto

import "time"

// TaskListQuery filtros, orden y paginación de GET /api/tasks.
type TaskListQuery struct {
	Status     string `query:"status"`
	Building   int64  `query:"building"`
	AssignedTo string `query:"assigned_to"`
	Search     string `query:"search"`
	Sort       string `query:"sort"` // recent | due_asc | priority | updated
	Limit      int    `query:"limit"`
	Page       int    `query:"page"`
}

// TaskResponse tarea.
type TaskResponse struct {
	ID           int64     `json:"id"`
	BuildingID   int64     `json:"building_id"`
	RoomID       int64     `json:"room_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	AssignedTo   string    `json:"assigned_to,omitempty"`
	DueDate      string    `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedBy    *int64    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	BuildingName string    `json:"building_name"`
	RoomLabel    string    `json:"room_label"`
}

// TaskListResponse página de tareas.
type TaskListResponse struct {
	Data []TaskResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

// CreateTaskRequest alta de tarea.
type CreateTaskRequest struct {
	BuildingID  int64  `json:"building_id"`
	RoomID      int64  `json:"room_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

// UpdateTaskRequest actualización parcial: solo los campos presentes cambian.
type UpdateTaskRequest struct {
	Status     OptionalString `json:"status"`
	Priority   OptionalString `json:"priority"`
	AssignedTo OptionalString `json:"assigned_to"`
	DueDate    OptionalString `json:"due_date"`
}
